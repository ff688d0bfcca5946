package cmdline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantExe  string
		wantArgs []string
	}{
		{
			name:     "msiexec with braced product code",
			raw:      `MsiExec.exe /I{90160000-008C-0000-1000-0000000FF1CE}`,
			wantExe:  "MsiExec.exe",
			wantArgs: []string{"/I{90160000-008C-0000-1000-0000000FF1CE}"},
		},
		{
			name:     "double quoted path with spaces and parens",
			raw:      `"C:\Program Files (x86)\Foo Bar\unins000.exe" /SILENT`,
			wantExe:  `C:\Program Files (x86)\Foo Bar\unins000.exe`,
			wantArgs: []string{"/SILENT"},
		},
		{
			name:     "unquoted windows path keeps backslashes",
			raw:      `C:\Windows\system32\msiexec.exe /x {ABCD-1234} /qn`,
			wantExe:  `C:\Windows\system32\msiexec.exe`,
			wantArgs: []string{"/x", "{ABCD-1234}", "/qn"},
		},
		{
			name:     "single quoted path",
			raw:      `'C:\Program Files\App\uninstall.exe' -s`,
			wantExe:  `C:\Program Files\App\uninstall.exe`,
			wantArgs: []string{"-s"},
		},
		{
			name:     "property assignments stay single tokens",
			raw:      `setup.exe TRANSFORMS=C:\t.mst REBOOT=ReallySuppress`,
			wantExe:  "setup.exe",
			wantArgs: []string{`TRANSFORMS=C:\t.mst`, "REBOOT=ReallySuppress"},
		},
		{
			name:     "quoted argument with embedded spaces",
			raw:      `uninstall.exe /log "C:\My Logs\out.txt"`,
			wantExe:  "uninstall.exe",
			wantArgs: []string{"/log", `C:\My Logs\out.txt`},
		},
		{
			name:     "shell metacharacters are data not syntax",
			raw:      `foo.exe @args & $(whoami)`,
			wantExe:  "foo.exe",
			wantArgs: []string{"@args", "&", "$(whoami)"},
		},
		{
			name:     "whitespace runs collapse",
			raw:      "  app.exe   /S\t/norestart ",
			wantExe:  "app.exe",
			wantArgs: []string{"/S", "/norestart"},
		},
		{
			name:     "executable only",
			raw:      `C:\Tools\remove.exe`,
			wantExe:  `C:\Tools\remove.exe`,
			wantArgs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cl, err := Split(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.wantExe, cl.Executable)
			assert.Equal(t, tt.wantArgs, cl.Args)
		})
	}
}

func TestSplitEmpty(t *testing.T) {
	for _, raw := range []string{"", "   ", "\t"} {
		_, err := Split(raw)
		assert.ErrorIs(t, err, ErrEmptyCommand, "input %q", raw)
	}
}

func TestSplitUnbalancedQuote(t *testing.T) {
	tests := []string{
		`"C:\Program Files\App\uninstall.exe /S`,
		`app.exe "unclosed`,
		`app.exe 'unclosed`,
	}
	for _, raw := range tests {
		_, err := Split(raw)
		require.Error(t, err, "input %q", raw)
		assert.ErrorIs(t, err, ErrExpansion, "input %q", raw)
	}
}

func TestEscapeMeta(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "braces escaped outside quotes",
			in:   `/X{AB-12}`,
			want: `/X\{AB-12\}`,
		},
		{
			name: "backslashes doubled outside quotes",
			in:   `C:\a\b`,
			want: `C:\\a\\b`,
		},
		{
			name: "inside double quotes only shell-active chars escaped",
			in:   `"C:\a (x86)\b$"`,
			want: `"C:\\a (x86)\\b\$"`,
		},
		{
			name: "single quotes copied verbatim",
			in:   `'C:\a & b'`,
			want: `'C:\a & b'`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, escapeMeta(tt.in))
		})
	}
}
