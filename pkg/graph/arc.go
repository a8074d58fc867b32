package graph

// An Arc leaves a node towards To. Distance is the great-circle length in kilometers.
// Passage names the strait or canal the arc runs through, empty for open sea.
type Arc struct {
	To       NodeId
	Distance float64
	Passage  string
}

func MakeArc(to NodeId, distance float64, passage string) Arc {
	return Arc{To: to, Distance: distance, Passage: passage}
}

func (a Arc) Destination() NodeId { return a.To }
func (a Arc) Cost() float64       { return a.Distance }
