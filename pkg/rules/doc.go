// Package rules loads patch sets: files that name a target and list the
// rules to apply to it, in order.
//
// Patch sets are YAML (.yaml, .yml) or TOML (.toml):
//
//	name: telemetry
//	target:
//	  file: out/main.js
//	  search:
//	    darwin: ["/Applications/App.app/Contents/Resources/app"]
//	  path_binary: app
//	rules:
//	  - name: machine-id
//	    pattern: 'machineId\s*=\s*"[^"]*"'
//	    replacement: 'machineId = "{{ uuid "machine" }}"'
//	    probe: 'machineId = "[0-9a-f-]{36}"'
//	    template: true
//
// Rule text is converted to the byte rules the patch engine expects here,
// never inside the engine. With encoding "hex" the three fields are hex
// strings; hex patterns and probes match their bytes literally.
//
// Templated rules are rendered with text/template and these functions:
//
//	uuid "key"     a random UUID, fixed per key for the whole run
//	macaddr "key"  a random MAC address, fixed per key for the whole run
//	var "key"      a value supplied by the user (--var key=value)
//
// A user supplied value for a key always wins over a generated one. Values
// are inserted literally: regex-escaped in pattern and probe, with $ and \
// doubled in the replacement.
package rules
