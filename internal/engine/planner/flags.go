package planner

import "go.trai.ch/cplan/internal/core/domain"

// Flags returns the compiler command for bc as ordered tokens.
// The order is fixed: compiler, warnings, includes, standard, -c, -fPIC,
// -shared, -o <output>, search paths and link names, inputs.
func Flags(cfg *domain.Config, bc domain.BuildContext) []string {
	c := cfg.Compile
	inputs := bc.Inputs()
	libraries := bc.Libraries()

	flags := make([]string, 0, 8+len(c.Warnings)+len(c.Includes)+len(c.Libraries)+len(libraries)+len(inputs))
	flags = append(flags, c.Compiler)

	if !bc.SuppressWarnings() {
		for _, w := range c.Warnings {
			flags = append(flags, "-W"+w)
		}
	}

	for _, inc := range c.Includes {
		flags = append(flags, "-I"+cfg.Abs(inc))
	}

	flags = append(flags, "-std="+c.Standard)

	if bc.CompileOnly() {
		flags = append(flags, "-c")
	}

	if bc.Kind() == domain.KindObject {
		flags = append(flags, "-fPIC")
	}

	if bc.Shared() {
		flags = append(flags, "-shared")
	}

	if out := bc.Output(); out != "" {
		flags = append(flags, "-o", out)
	}

	if !bc.CompileOnly() {
		for _, dir := range c.Libraries {
			flags = append(flags, "-L"+cfg.Abs(dir))
		}
		for _, lib := range libraries {
			flags = append(flags, "-l"+lib)
		}
	}

	for _, in := range inputs {
		flags = append(flags, cfg.Abs(in))
	}

	return flags
}
