package naming

import "strings"

// CommentMarker starts a shell comment.
const CommentMarker = "#"

// IsBlankOrComment reports whether a trimmed command is empty or a whole-line comment.
func IsBlankOrComment(cmd string) bool {
	cmd = strings.TrimSpace(cmd)
	return cmd == "" || strings.HasPrefix(cmd, CommentMarker)
}

// StripComment removes a trailing inline comment. A '#' starts a comment only
// at the beginning of a word and outside of quotes, so "echo a#b" and
// "echo '# x'" are kept intact. Trailing whitespace is trimmed.
func StripComment(cmd string) string {
	var quote byte
	escaped := false
	for i := 0; i < len(cmd); i++ {
		c := cmd[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && quote != '\'':
			escaped = true
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '#' && (i == 0 || isSpace(cmd[i-1])):
			return strings.TrimRight(cmd[:i], " \t")
		}
	}
	return strings.TrimRight(cmd, " \t")
}

// HasBackgroundOperator reports whether cmd contains an unquoted '&' used to
// background a job. The logical-and "&&" and the redirections ">&", "&>"
// "<&" and the pipe "|&" are not background operators.
func HasBackgroundOperator(cmd string) bool {
	var quote byte
	escaped := false
	for i := 0; i < len(cmd); i++ {
		c := cmd[i]
		switch {
		case escaped:
			escaped = false
			continue
		case c == '\\' && quote != '\'':
			escaped = true
			continue
		case quote != 0:
			if c == quote {
				quote = 0
			}
			continue
		case c == '\'' || c == '"':
			quote = c
			continue
		case c != '&':
			continue
		}

		if i+1 < len(cmd) && cmd[i+1] == '&' {
			i++ // "&&"
			continue
		}
		if i > 0 && (cmd[i-1] == '>' || cmd[i-1] == '<' || cmd[i-1] == '|') {
			continue // ">&", "<&" or "|&"
		}
		if i+1 < len(cmd) && cmd[i+1] == '>' {
			continue // "&>"
		}
		return true
	}
	return false
}

// ShellQuote wraps a string in single quotes for safe use in shell commands.
func ShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t'
}
