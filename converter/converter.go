// Package converter implements the shunting-yard algorithm, turning an
// infix fnode.Component sequence (as produced by fparser) into a postfix
// one ready for postfixeval.
package converter

import "github.com/marcgallego/spreadsheet/fnode"

// ToPostfix converts infix to postfix. Operators are left-associative;
// for equal precedence the leftmost is evaluated first, matching the
// "pop while stack top precedence >= op precedence" rule.
func ToPostfix(infix []fnode.Component) []fnode.Component {
	out := make([]fnode.Component, 0, len(infix))
	var stack []fnode.Component

	popEmit := func() {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, top)
	}

	for _, c := range infix {
		switch v := c.(type) {
		case fnode.Paren:
			if v.Open {
				stack = append(stack, c)
				continue
			}
			for len(stack) > 0 {
				if p, ok := stack[len(stack)-1].(fnode.Paren); ok && p.Open {
					break
				}
				popEmit()
			}
			if len(stack) > 0 {
				stack = stack[:len(stack)-1] // discard matching '('
			}
		case fnode.Operator:
			for len(stack) > 0 {
				top, ok := stack[len(stack)-1].(fnode.Operator)
				if !ok || top.Precedence() < v.Precedence() {
					break
				}
				popEmit()
			}
			stack = append(stack, c)
		default:
			out = append(out, c)
		}
	}

	for len(stack) > 0 {
		popEmit()
	}
	return out
}
