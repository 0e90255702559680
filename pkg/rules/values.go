package rules

import (
	"crypto/rand"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/arthur-debert/repatch/pkg/errors"
)

// reservedMACs are never produced by macaddr: null, broadcast and the
// address macOS reports for its virtual bridge.
var reservedMACs = map[string]bool{
	"00:00:00:00:00:00": true,
	"FF:FF:FF:FF:FF:FF": true,
	"AC:DE:48:00:11:22": true,
}

// Values hands out the values templated rules embed. Each key resolves
// once per run; later lookups of the same key return the same value.
type Values struct {
	overrides map[string]string
	resolved  map[string]string
	// placeholder answers Var for keys without an override, when set.
	placeholder *string

	newUUID func() string
	newMAC  func() string
}

// NewValues creates a value source. overrides are user supplied values
// that win over generated ones.
func NewValues(overrides map[string]string) *Values {
	v := &Values{
		overrides: make(map[string]string, len(overrides)),
		resolved:  make(map[string]string),
		newUUID:   uuid.NewString,
		newMAC:    randomMAC,
	}
	for k, val := range overrides {
		v.overrides[k] = val
	}
	return v
}

// WithPlaceholder makes Var return value instead of failing for keys the
// user did not supply.
func (v *Values) WithPlaceholder(value string) *Values {
	v.placeholder = &value
	return v
}

// ParseAssignments turns key=value pairs into an override map.
func ParseAssignments(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.Newf(errors.ErrInvalidInput, "invalid value assignment %q", pair).
				WithHint("use key=value")
		}
		out[key] = value
	}
	return out, nil
}

// UUID returns the UUID for key, generating one on first use.
func (v *Values) UUID(key string) string {
	return v.resolve(key, v.newUUID)
}

// MAC returns the MAC address for key, generating one on first use.
func (v *Values) MAC(key string) string {
	return v.resolve(key, v.newMAC)
}

// Var returns a user supplied value. Unlike UUID and MAC there is nothing
// to generate, so a missing key is an error.
func (v *Values) Var(key string) (string, error) {
	if val, ok := v.overrides[key]; ok {
		v.resolved[key] = val
		return val, nil
	}
	if v.placeholder != nil {
		return *v.placeholder, nil
	}
	return "", errors.Newf(errors.ErrInvalidInput, "no value given for %q", key).
		WithHint(fmt.Sprintf("pass --var %s=<value>", key))
}

func (v *Values) resolve(key string, generate func() string) string {
	if val, ok := v.resolved[key]; ok {
		return val
	}
	val, ok := v.overrides[key]
	if !ok {
		val = generate()
	}
	v.resolved[key] = val
	return val
}

// Used returns every value handed out so far, by key.
func (v *Values) Used() map[string]string {
	out := make(map[string]string, len(v.resolved))
	for k, val := range v.resolved {
		out[k] = val
	}
	return out
}

// Keys returns the keys of Used in sorted order.
func (v *Values) Keys() []string {
	keys := make([]string, 0, len(v.resolved))
	for k := range v.resolved {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func randomMAC() string {
	for {
		var b [6]byte
		if _, err := rand.Read(b[:]); err != nil {
			panic(fmt.Sprintf("crypto/rand failed: %v", err))
		}
		mac := formatMAC(b[:])
		if !reservedMACs[mac] {
			return mac
		}
	}
}

func formatMAC(b []byte) string {
	parts := make([]string, len(b))
	for i, octet := range b {
		parts[i] = fmt.Sprintf("%02X", octet)
	}
	return strings.Join(parts, ":")
}
