package uninstall

import (
	"fmt"
	"os"
	"strings"
)

// PrepareCommand turns a raw registry uninstall string into a program
// and argument string ready to execute. Environment references are
// expanded and msiexec install switches are rewritten to uninstall.
func PrepareCommand(command string) (program, args string, err error) {
	program, args, err = splitCommand(command)
	if err != nil {
		return "", "", err
	}
	program = expandPercentVars(program)
	args = expandPercentVars(args)
	if isMsiexec(program) {
		args = rewriteMsiexecInstallToUninstall(args)
	}
	return program, args, nil
}

// splitCommand separates the executable from its arguments. A quoted
// leading token may contain spaces.
func splitCommand(command string) (string, string, error) {
	trimmed := strings.TrimSpace(command)
	if trimmed == "" {
		return "", "", fmt.Errorf("uninstall command is empty")
	}

	if rest, ok := strings.CutPrefix(trimmed, `"`); ok {
		if end := strings.IndexByte(rest, '"'); end >= 0 {
			program := strings.TrimSpace(rest[:end])
			if program == "" {
				return "", "", fmt.Errorf("uninstall command executable is empty")
			}
			return program, strings.TrimSpace(rest[end+1:]), nil
		}
	}

	program, args, _ := strings.Cut(trimmed, " ")
	program = strings.TrimSpace(program)
	if program == "" {
		return "", "", fmt.Errorf("uninstall command executable is empty")
	}
	return program, strings.TrimSpace(args), nil
}

func isMsiexec(program string) bool {
	normalized := strings.ReplaceAll(program, "/", `\`)
	if i := strings.LastIndexByte(normalized, '\\'); i >= 0 {
		normalized = normalized[i+1:]
	}
	return strings.EqualFold(normalized, "msiexec") || strings.EqualFold(normalized, "msiexec.exe")
}

// rewriteMsiexecInstallToUninstall flips a standalone /i or -i switch
// to /X so activating the action removes the product instead of
// repairing it. Commands that already carry /x are left alone.
func rewriteMsiexecInstallToUninstall(parameters string) string {
	trimmed := strings.TrimSpace(parameters)
	if trimmed == "" {
		return ""
	}
	lower := strings.ToLower(trimmed)
	if strings.Contains(lower, "/x") || strings.Contains(lower, "-x") {
		return trimmed
	}

	b := []byte(trimmed)
	for i := 0; i+1 < len(b); i++ {
		if b[i] != '/' && b[i] != '-' {
			continue
		}
		if b[i+1] != 'i' && b[i+1] != 'I' {
			continue
		}
		prevOK := i == 0 || b[i-1] == ' ' || b[i-1] == '\t'
		nextOK := i+2 >= len(b) || b[i+2] == ' ' || b[i+2] == '\t' || b[i+2] == '{' || b[i+2] == '"'
		if !prevOK || !nextOK {
			continue
		}
		out := append([]byte(nil), b...)
		out[i+1] = 'X'
		return string(out)
	}
	return trimmed
}

// expandPercentVars resolves %NAME% references from the environment.
// Unknown names stay literal, matching shell expansion on the systems
// that produce these commands.
func expandPercentVars(input string) string {
	if !strings.Contains(input, "%") {
		return input
	}
	var out strings.Builder
	rest := input
	for {
		start := strings.IndexByte(rest, '%')
		if start < 0 {
			out.WriteString(rest)
			return out.String()
		}
		end := strings.IndexByte(rest[start+1:], '%')
		if end < 0 {
			out.WriteString(rest)
			return out.String()
		}
		name := rest[start+1 : start+1+end]
		out.WriteString(rest[:start])
		if value, ok := os.LookupEnv(name); ok && name != "" {
			out.WriteString(value)
		} else {
			out.WriteString("%" + name + "%")
		}
		rest = rest[start+2+end:]
	}
}
