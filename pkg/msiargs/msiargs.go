// pkg/msiargs/msiargs.go - rewrites msiexec argument lists into forced-silent
// uninstall invocations.
//
// Vendors record msiexec uninstall strings in every imaginable shape: install
// mode instead of uninstall mode, interactive UI levels, logging directives
// with or without a trailing path, property assignments mixed between
// switches. Rewrite normalizes all of that in one left-to-right pass so the
// result always uninstalls, always runs silent, and never reboots on its own.

package msiargs

import (
	"strings"
)

// tokenKind tags the classification of one argument token. Classification is
// positional: a token's effect can depend on the token that follows it.
type tokenKind int

const (
	kindBareMode      tokenKind = iota // "/I" or "/X" with the package in the next token
	kindAttachedMode                   // "/I{...}" or "/X{...}" single token
	kindLogDirective                   // "/l*v", "/log" - may take a bare trailing path
	kindQuietDirective                 // "/quiet", "/passive", "/q", "/qb!" - dropped
	kindRestartDirective               // "/restart", "/norestart", "/forcerestart", ... - dropped
	kindOtherSwitch                    // any other "/..." - kept, may take a bare trailing value
	kindNamedParam                     // "NAME=value" property assignment or stray token
)

func (k tokenKind) String() string {
	switch k {
	case kindBareMode:
		return "bare-mode"
	case kindAttachedMode:
		return "attached-mode"
	case kindLogDirective:
		return "log-directive"
	case kindQuietDirective:
		return "quiet-directive"
	case kindRestartDirective:
		return "restart-directive"
	case kindOtherSwitch:
		return "other-switch"
	default:
		return "named-param"
	}
}

// msiexec letters accepted after /l (wildcard and flush modifiers included)
// and after /q.
const (
	logModeChars   = "iwearucmopvx*+!"
	quietModeChars = "nbrf+-!"
)

// Classification rules in priority order; the first match wins. Rewrite
// applies the per-kind transform because some transforms consume the
// following token too.
var rules = []struct {
	kind  tokenKind
	match func(lower string) bool
}{
	{kindBareMode, isBareMode},
	{kindAttachedMode, isAttachedMode},
	{kindLogDirective, isLogDirective},
	{kindQuietDirective, isQuietDirective},
	{kindRestartDirective, isRestartDirective},
	{kindOtherSwitch, isSwitch},
}

// classify returns the kind of tok. Matching is ASCII case-insensitive;
// msiexec accepts switches in any case.
func classify(tok string) tokenKind {
	lower := strings.ToLower(tok)
	for _, r := range rules {
		if r.match(lower) {
			return r.kind
		}
	}
	return kindNamedParam
}

func isBareMode(lower string) bool {
	return lower == "/i" || lower == "/x"
}

func isAttachedMode(lower string) bool {
	return len(lower) > 2 && (strings.HasPrefix(lower, "/i") || strings.HasPrefix(lower, "/x"))
}

func isLogDirective(lower string) bool {
	if lower == "/log" {
		return true
	}
	if !strings.HasPrefix(lower, "/l") {
		return false
	}
	return allCharsIn(lower[2:], logModeChars)
}

func isQuietDirective(lower string) bool {
	if lower == "/quiet" || lower == "/passive" {
		return true
	}
	if !strings.HasPrefix(lower, "/q") {
		return false
	}
	return allCharsIn(lower[2:], quietModeChars)
}

func isRestartDirective(lower string) bool {
	if !strings.HasPrefix(lower, "/") || !strings.HasSuffix(lower, "restart") {
		return false
	}
	for _, c := range lower[1 : len(lower)-len("restart")] {
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}

func isSwitch(lower string) bool {
	return strings.HasPrefix(lower, "/")
}

func allCharsIn(s, set string) bool {
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(set, s[i]) < 0 {
			return false
		}
	}
	return true
}

// isBareValue reports whether a token can serve as the trailing value of the
// preceding switch: no leading slash, no property assignment.
func isBareValue(tok string) bool {
	return !strings.HasPrefix(tok, "/") && !strings.Contains(tok, "=")
}

// Rewrite transforms an msiexec argument list into its forced-silent
// uninstall equivalent. Switches and their attached values accumulate first,
// property assignments trail in their original relative order, and /qn plus
// /norestart close the switch block. Quiet and restart directives from the
// input are dropped; the pass removes every one of them, so the appended
// flags appear exactly once.
func Rewrite(args []string) []string {
	var switchParams, namedParams []string

	for i := 0; i < len(args); i++ {
		tok := args[i]
		switch classify(tok) {
		case kindBareMode:
			// Force uninstall mode. The next token is msiexec's mandatory
			// package path or product code; keep the pair adjacent. A mode
			// switch as the last token simply has no path to carry along.
			switchParams = append(switchParams, "/X")
			if i+1 < len(args) {
				i++
				switchParams = append(switchParams, args[i])
			}
		case kindAttachedMode:
			switchParams = append(switchParams, "/X"+tok[2:])
		case kindLogDirective, kindOtherSwitch:
			switchParams = append(switchParams, tok)
			if i+1 < len(args) && isBareValue(args[i+1]) {
				i++
				switchParams = append(switchParams, args[i])
			}
		case kindQuietDirective, kindRestartDirective:
			// Superseded by the flags appended below.
		case kindNamedParam:
			namedParams = append(namedParams, tok)
		}
	}

	switchParams = append(switchParams, "/qn", "/norestart")
	return append(switchParams, namedParams...)
}

// IsMsiexec reports whether the resolved executable is the Windows installer
// tool. Only msiexec command lines go through Rewrite; for anything else the
// switch grammar is vendor-specific and rewriting would corrupt it.
func IsMsiexec(path string) bool {
	base := strings.ToLower(baseName(path))
	return base == "msiexec" || base == "msiexec.exe"
}

// baseName is a separator-agnostic filepath.Base: registry values use
// backslashes regardless of the platform this code is compiled for.
func baseName(path string) string {
	if i := strings.LastIndexAny(path, `\/`); i >= 0 {
		return path[i+1:]
	}
	return path
}
