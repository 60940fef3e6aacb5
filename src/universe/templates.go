package universe

//Templates are the seeding templates every universe knows
var Templates = []Template{
	{"testSample1", "the test sample with 3 stable patterns", [][]int{
		{1, 1}, {1, 2},
		{2, 1}, {2, 2},
		{3, 3},
		{4, 2},
		{4, 3},
		{5, 3},
	}},
	{"block", "2x2 still life", [][]int{{1, 1}, {2, 1}, {1, 2}, {2, 2}}},
	{"blinker", "period 2 oscillator", [][]int{{1, 2}, {2, 2}, {3, 2}}},
	{"toad", "period 2 oscillator", [][]int{{2, 2}, {3, 2}, {4, 2}, {1, 3}, {2, 3}, {3, 3}}},
	{"glider", "moves one cell diagonally every 4 generations", [][]int{{1, 0}, {2, 1}, {0, 2}, {1, 2}, {2, 2}}},
}

//AddTemplates adds all the Templates to the universe
func AddTemplates(u Universe) {
	for _, t := range Templates {
		u.AddTemplate(t)
	}
}
