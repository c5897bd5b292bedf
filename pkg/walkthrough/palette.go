package walkthrough

import (
	"fmt"
	"strconv"
	"strings"
)

// Role is the semantic identity of a paint call. Roles stay distinct even
// when a palette gives two of them the same RGB value.
type Role int

const (
	RoleInactiveBranch Role = iota
	RoleActiveStatement
	RolePassiveCode
	RoleBrokenCode
	RoleTrueCondition
	RoleFalseCondition
	RoleConfigField
	roleCount
)

var roleNames = [roleCount]string{
	RoleInactiveBranch:  "inactive_branch",
	RoleActiveStatement: "active_statement",
	RolePassiveCode:     "passive_code",
	RoleBrokenCode:      "broken_code",
	RoleTrueCondition:   "true_condition",
	RoleFalseCondition:  "false_condition",
	RoleConfigField:     "config_field",
}

func (r Role) String() string {
	if r < 0 || r >= roleCount {
		return "unknown"
	}
	return roleNames[r]
}

// Roles returns every role in declaration order.
func Roles() []Role {
	roles := make([]Role, roleCount)
	for i := range roles {
		roles[i] = Role(i)
	}
	return roles
}

// ParseRole converts a role name such as "active_statement" to a Role.
func ParseRole(name string) (Role, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	for i, n := range roleNames {
		if n == normalized {
			return Role(i), nil
		}
	}
	return 0, fmt.Errorf("unknown colour role: %q", name)
}

// RGB is a 24-bit colour value.
type RGB struct {
	R, G, B uint8
}

// Hex formats the colour as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseRGB parses #rrggbb (the leading # is optional).
func ParseRGB(s string) (RGB, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("invalid colour %q: want #rrggbb", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// Color is what a Painter receives: the role plus its RGB value from the palette.
type Color struct {
	Role Role
	RGB  RGB
}

func (c Color) String() string {
	return c.Role.String() + "(" + c.RGB.Hex() + ")"
}

// Palette maps every role to an RGB value. It is a plain value: copy it,
// override entries with Set, and pass it to a walk with WithPalette.
type Palette [roleCount]RGB

// DefaultPalette returns the stock colours.
func DefaultPalette() Palette {
	return Palette{
		RoleInactiveBranch:  {R: 255, G: 102, B: 102}, // light red
		RoleActiveStatement: {R: 102, G: 255, B: 102}, // light green
		RolePassiveCode:     {R: 192, G: 192, B: 192}, // light gray
		RoleBrokenCode:      {R: 255, G: 200, B: 0},   // orange
		RoleTrueCondition:   {R: 0, G: 255, B: 0},
		RoleFalseCondition:  {R: 255, G: 0, B: 0},
		RoleConfigField:     {R: 0, G: 0, B: 255},
	}
}

// Color returns the paint value for a role.
func (p Palette) Color(role Role) Color {
	return Color{Role: role, RGB: p[role]}
}

// Set overrides the colour of one role.
func (p *Palette) Set(role Role, c RGB) {
	p[role] = c
}

// WithOverrides returns a copy of p with the named roles replaced.
// Keys are role names, values are #rrggbb strings.
func (p Palette) WithOverrides(overrides map[string]string) (Palette, error) {
	out := p
	for name, value := range overrides {
		role, err := ParseRole(name)
		if err != nil {
			return p, err
		}
		c, err := ParseRGB(value)
		if err != nil {
			return p, fmt.Errorf("palette %s: %w", name, err)
		}
		out.Set(role, c)
	}
	return out, nil
}
