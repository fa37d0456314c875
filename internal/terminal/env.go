package terminal

import "os"

// ChildEnv is the fixed, minimal environment handed to the child
// process. The child sees nothing from the parent's environment.
type ChildEnv struct {
	// Term is the advertised terminal type.
	Term string

	// Locale is the LC_ALL value; the PTY stream is decoded as UTF-8, so
	// the child should write UTF-8.
	Locale string

	// Home is the child's HOME directory.
	Home string

	// Unbuffered asks interpreters that honor it (PYTHONUNBUFFERED) to
	// flush output immediately.
	Unbuffered bool
}

// DefaultChildEnv returns the standard child environment.
func DefaultChildEnv() ChildEnv {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "/"
	}
	return ChildEnv{
		Term:       "xterm",
		Locale:     "en_US.UTF-8",
		Home:       home,
		Unbuffered: true,
	}
}

// List renders the environment in the form exec.Cmd expects.
func (e ChildEnv) List() []string {
	env := []string{
		"TERM=" + e.Term,
		"LC_ALL=" + e.Locale,
		"HOME=" + e.Home,
	}
	if e.Unbuffered {
		env = append(env, "PYTHONUNBUFFERED=1")
	}
	return env
}

// isZero reports whether the env was left unconfigured.
func (e ChildEnv) isZero() bool {
	return e == ChildEnv{}
}
