package errors_test

import (
	stderrors "errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/repatch/pkg/errors"
	"github.com/arthur-debert/repatch/pkg/patch"
	"github.com/arthur-debert/repatch/pkg/rules"
)

func TestPatchError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *errors.PatchError
		want string
	}{
		{
			name: "plain",
			err:  errors.New(errors.ErrTargetNotFound, "main.js not found"),
			want: "[TARGET_NOT_FOUND] main.js not found",
		},
		{
			name: "formatted",
			err:  errors.Newf(errors.ErrIncomplete, "%d of %d rules were skipped", 1, 3),
			want: "[INCOMPLETE] 1 of 3 rules were skipped",
		},
		{
			name: "wrapped cause",
			err:  errors.Wrap(fs.ErrPermission, errors.ErrFileAccess, "cannot read /app/main.js"),
			want: "[FILE_ACCESS] cannot read /app/main.js: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.NotNil(t, tt.err.Details)
		})
	}
}

func TestWrap_NilStaysNil(t *testing.T) {
	assert.Nil(t, errors.Wrap(nil, errors.ErrFileWrite, "save failed"))
	assert.Nil(t, errors.Wrapf(nil, errors.ErrFileWrite, "save %s failed", "/app/main.js"))
}

func TestWrap_KeepsCauseReachable(t *testing.T) {
	busy := errors.Wrap(fs.ErrPermission, errors.ErrResourceBusy, "/app/main.js is in use")
	outer := errors.Wrap(busy, errors.ErrFileWrite, "save failed")

	assert.True(t, stderrors.Is(outer, fs.ErrPermission))
	assert.True(t, stderrors.Is(outer, errors.New(errors.ErrResourceBusy, "")))
	assert.False(t, stderrors.Is(outer, errors.New(errors.ErrBackup, "")))

	// The outermost code wins.
	assert.Equal(t, errors.ErrFileWrite, errors.GetErrorCode(outer))
	assert.True(t, errors.IsErrorCode(outer, errors.ErrFileWrite))
	assert.False(t, errors.IsErrorCode(outer, errors.ErrResourceBusy))
}

func TestGetErrorCode_Foreign(t *testing.T) {
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(stderrors.New("boom")))
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(nil))
	assert.Nil(t, errors.GetErrorDetails(stderrors.New("boom")))
}

func TestWithDetails(t *testing.T) {
	err := errors.New(errors.ErrBackup, "cannot back up").
		WithDetails(map[string]interface{}{"path": "/app/main.js.bak", "source": "/app/main.js"}).
		WithDetail("strategy", "suffix")

	assert.Equal(t, map[string]interface{}{
		"path":     "/app/main.js.bak",
		"source":   "/app/main.js",
		"strategy": "suffix",
	}, err.Details)
}

func TestGetHint(t *testing.T) {
	t.Run("busy target", func(t *testing.T) {
		err := errors.Newf(errors.ErrResourceBusy, "%s is in use", "/app/main.js").
			WithHint("close the application using it and try again")
		assert.Equal(t, "close the application using it and try again", errors.GetHint(err))
	})

	t.Run("outer hint wins", func(t *testing.T) {
		inner := errors.New(errors.ErrTargetNotFound, "missing").WithHint("pass --target")
		outer := errors.Wrap(inner, errors.ErrInternal, "run failed").WithHint("see repatch locate")
		assert.Equal(t, "see repatch locate", errors.GetHint(outer))
	})

	t.Run("found below a wrapper without one", func(t *testing.T) {
		inner := errors.New(errors.ErrTargetNotFound, "missing").WithHint("pass --target")
		outer := errors.Wrap(inner, errors.ErrInternal, "run failed")
		assert.Equal(t, "pass --target", errors.GetHint(outer))
	})

	t.Run("none", func(t *testing.T) {
		assert.Empty(t, errors.GetHint(stderrors.New("plain")))
		assert.Empty(t, errors.GetHint(errors.New(errors.ErrInternal, "bare")))
		assert.Empty(t, errors.GetHint(nil))
	})
}

func TestErrorFlows(t *testing.T) {
	t.Run("malformed rule names the rule and field", func(t *testing.T) {
		_, err := patch.New().Compile(patch.Rule{
			Name:        "banner",
			Pattern:     []byte(`(`),
			Replacement: []byte(`x`),
			Probe:       []byte(`x`),
		})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrMalformedRule))

		details := errors.GetErrorDetails(err)
		assert.Equal(t, "banner", details["rule"])
		assert.Equal(t, "pattern", details["field"])
		assert.Equal(t, "(", details["expression"])
	})

	t.Run("bad assignment carries a hint", func(t *testing.T) {
		_, err := rules.ParseAssignments([]string{"novalue"})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
		assert.Equal(t, "use key=value", errors.GetHint(err))
	})

	t.Run("missing var hint survives template wrapping", func(t *testing.T) {
		spec := rules.RuleSpec{Template: true, Pattern: "a", Replacement: `{{var "token"}}`, Probe: "b"}
		_, err := spec.Build(rules.NewValues(nil))
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrRuleFile))
		assert.Equal(t, "pass --var token=<value>", errors.GetHint(err))
	})
}
