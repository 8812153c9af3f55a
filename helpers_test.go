package dynquery

import "github.com/jakecoffman/cp/v2"

func cpVector(x, y float64) cp.Vector {
	return cp.Vector{X: x, Y: y}
}
