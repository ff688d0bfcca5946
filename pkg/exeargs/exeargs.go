// pkg/exeargs/exeargs.go - argument composition for non-MSI uninstallers.
//
// EXE uninstallers share no switch grammar, so nothing is classified or
// validated here. The caller either trusts the recorded command line as
// already silent, or supplies the silent switches for this vendor and decides
// whether they extend or replace the recorded arguments.

package exeargs

// Compose builds the final argument list for an EXE uninstaller. With
// replace set, the silent params stand alone; otherwise they are appended to
// the original arguments. Empty silent params leave the original list
// unchanged. The result never aliases the caller's slices.
func Compose(orig, silent []string, replace bool) []string {
	if len(silent) == 0 {
		return append([]string{}, orig...)
	}
	if replace {
		return append([]string{}, silent...)
	}

	out := make([]string, 0, len(orig)+len(silent))
	out = append(out, orig...)
	out = append(out, silent...)
	return out
}
