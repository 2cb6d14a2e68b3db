package dashboard

// Point is one bar or slice of a chart.
type Point struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// Series is a labelled chart.
type Series struct {
	Title  string  `json:"title"`
	Points []Point `json:"points"`
	Total  int     `json:"total"`
}

// Label pairs a counter name with its display label.
type Label struct {
	Key   string
	Label string
}

// Chart renders counters in the given order. Counters absent from the map are
// rendered as zero.
func Chart(title string, counters Counters, order []Label) Series {
	s := Series{Title: title, Points: make([]Point, 0, len(order))}
	for _, l := range order {
		v := counters[l.Key]
		s.Points = append(s.Points, Point{Label: l.Label, Value: v})
		s.Total += v
	}
	return s
}
