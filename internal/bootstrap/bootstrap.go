// Package bootstrap assembles the script injected into every page before the
// page's own scripts run.
package bootstrap

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// BindingName is the global function the native side binds for page messages.
const BindingName = "__webshell_ipc"

//go:embed scripts/bootstrap.js scripts/bootstrap_mac.js
var scripts embed.FS

// Variant selects the platform flavor of the bootstrap.
type Variant int

const (
	// VariantDefault is used where the native title bar stays visible.
	VariantDefault Variant = iota
	// VariantMac adds a drag strip for windows whose title bar is hidden.
	VariantMac
)

// String returns the string representation of the variant.
func (v Variant) String() string {
	switch v {
	case VariantDefault:
		return "default"
	case VariantMac:
		return "mac"
	default:
		return "unknown"
	}
}

// Script returns the bootstrap for v followed by each inject file in order.
// .js files are appended as-is; .css files are wrapped in a script that adds
// a <style> element once the document exists.
func Script(v Variant, inject []string) (string, error) {
	base, err := scripts.ReadFile("scripts/bootstrap.js")
	if err != nil {
		return "", fmt.Errorf("read bootstrap: %w", err)
	}

	var b strings.Builder
	b.Write(base)

	switch v {
	case VariantDefault:
	case VariantMac:
		mac, err := scripts.ReadFile("scripts/bootstrap_mac.js")
		if err != nil {
			return "", fmt.Errorf("read mac bootstrap: %w", err)
		}
		b.WriteString("\n")
		b.Write(mac)
	default:
		return "", fmt.Errorf("unknown bootstrap variant %d", int(v))
	}

	for _, path := range inject {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read inject file: %w", err)
		}
		b.WriteString("\n")
		switch strings.ToLower(filepath.Ext(path)) {
		case ".css":
			snippet, err := styleScript(string(data))
			if err != nil {
				return "", fmt.Errorf("%s: %w", path, err)
			}
			b.WriteString(snippet)
		default:
			b.Write(data)
		}
	}

	return b.String(), nil
}

func styleScript(css string) (string, error) {
	quoted, err := json.Marshal(css)
	if err != nil {
		return "", fmt.Errorf("encode stylesheet: %w", err)
	}
	return fmt.Sprintf(`(function () {
  var css = %s;
  function add() {
    var style = document.createElement("style");
    style.textContent = css;
    (document.head || document.documentElement).appendChild(style);
  }
  if (document.readyState === "loading") {
    document.addEventListener("DOMContentLoaded", add);
  } else {
    add();
  }
})();
`, quoted), nil
}
