// Package vpn manages the institutional (UPV) dial-up VPN entries.
//
// The package wraps two Windows utilities:
//
//   - rasdial: dialing, hanging up, and reporting the active connection
//   - powershell (Add/Get/Remove-VpnConnection): registering, listing, and
//     removing dial-up entries
//
// All durable state lives in the OS dial-up subsystem. The Manager only
// builds command lines, runs them through the common.Runner abstraction,
// and interprets the textual output: a success marker or an OS diagnostic.
// Output the parser does not recognize is surfaced to the user rather than
// swallowed, since the utilities' text is localized and environment
// dependent.
//
// Entries are recognized as "ours" by the institutional server address
// they dial; entries pointing at other servers are never listed, purged,
// or deleted.
package vpn
