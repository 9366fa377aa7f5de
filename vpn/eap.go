package vpn

import (
	_ "embed"
	"strings"
)

// The institutional EAP configuration is embedded at build time and
// streamed to Add-VpnConnection when registering an entry.
//
//go:embed eap_config.xml
var eapConfigXML string

// eapConfig returns the embedded EAP XML cleaned for embedding in a
// PowerShell here-string: BOM stripped, surrounding whitespace trimmed.
func eapConfig() string {
	return strings.TrimSpace(strings.TrimPrefix(eapConfigXML, "\ufeff"))
}
