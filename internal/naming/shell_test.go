package naming

import "testing"

func TestIsBlankOrComment(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"# comment", true},
		{"  #indented comment", true},
		{"echo hi", false},
		{"echo hi # trailing", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := IsBlankOrComment(tt.input); got != tt.want {
				t.Errorf("IsBlankOrComment(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestStripComment(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no comment", "echo hi", "echo hi"},
		{"trailing comment", "echo hi # say hi", "echo hi"},
		{"tab before comment", "ls\t# list", "ls"},
		{"hash inside word", "echo a#b", "echo a#b"},
		{"hash in single quotes", "echo '# not a comment'", "echo '# not a comment'"},
		{"hash in double quotes", `echo "x # y" # real`, `echo "x # y"`},
		{"escaped hash", `echo \# still`, `echo \# still`},
		{"variable length", "echo ${#PATH}", "echo ${#PATH}"},
		{"trailing whitespace", "pwd   ", "pwd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripComment(tt.input); got != tt.want {
				t.Errorf("StripComment(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestHasBackgroundOperator(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"plain", "echo hi", false},
		{"trailing ampersand", "sleep 10 &", true},
		{"mid ampersand", "sleep 10 & echo hi", true},
		{"no space", "sleep 10&", true},
		{"logical and", "true && echo ok", false},
		{"stderr to stdout", "ls 2>&1", false},
		{"both redirect", "ls &> out.txt", false},
		{"pipe stderr", "ls |& cat", false},
		{"quoted single", "echo 'a & b'", false},
		{"quoted double", `echo "a & b"`, false},
		{"escaped", `echo a \& b`, false},
		{"and then background", "true && sleep 1 &", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasBackgroundOperator(tt.input); got != tt.want {
				t.Errorf("HasBackgroundOperator(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestShellQuote(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain", "'plain'"},
		{"with space", "'with space'"},
		{"it's", `'it'\''s'`},
		{"", "''"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ShellQuote(tt.input); got != tt.want {
				t.Errorf("ShellQuote(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
