// Package drive manages the personal network drive (Disco W).
//
// The package wraps two Windows utilities:
//
//   - net use: mapping, unmapping, and listing SMB network drives
//   - explorer.exe: opening a mounted drive in the file browser
//
// A drive letter conceptually walks Unmounted → Mounting → Mounted →
// Unmounting → Unmounted; a failed transition returns it to the prior
// stable state and the failure cause is classified from the OS diagnostic
// (already mounted, authentication failure, network unreachable, drive in
// use). The OS itself owns the mappings; the Manager only builds command
// lines and interprets their output.
package drive
