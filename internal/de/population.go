package de

// candidate is one population member: nvars parameter values followed by the
// score of those values. The score field is only meaningful once the
// candidate has been evaluated; in-population candidates never carry a stale
// score.
type candidate []float64

func newCandidate(nvars int) candidate {
	return make(candidate, nvars+1)
}

func (c candidate) params() []float64 {
	return c[:len(c)-1]
}

func (c candidate) score() float64 {
	return c[len(c)-1]
}

func (c candidate) setScore(v float64) {
	c[len(c)-1] = v
}

func (c candidate) copyFrom(src candidate) {
	copy(c, src)
}

// population is a fixed-size collection of candidates.
type population []candidate

func newPopulation(popSize, nvars int) population {
	p := make(population, popSize)
	for i := range p {
		p[i] = newCandidate(nvars)
	}
	return p
}

// worst returns the index and score of the worst member.
func (p population) worst() (int, float64) {
	iw, w := 0, p[0].score()
	for i := 1; i < len(p); i++ {
		if s := p[i].score(); s < w {
			iw, w = i, s
		}
	}
	return iw, w
}

// best returns the index of the best member.
func (p population) best() int {
	ib, b := 0, p[0].score()
	for i := 1; i < len(p); i++ {
		if s := p[i].score(); s > b {
			ib, b = i, s
		}
	}
	return ib
}

// avg returns the mean score across the population.
func (p population) avg() float64 {
	sum := 0.0
	for _, c := range p {
		sum += c.score()
	}
	return sum / float64(len(p))
}

// rows exposes the population as plain slices for reporting.
func (p population) rows() [][]float64 {
	out := make([][]float64, len(p))
	for i, c := range p {
		row := make([]float64, len(c))
		copy(row, c)
		out[i] = row
	}
	return out
}

// doubleBuffer holds the two population buffers and tracks which one plays
// the parent role. The swap at a generation boundary is an explicit
// operation rather than pointer aliasing.
type doubleBuffer struct {
	bufs [2]population
	old  int // index of the parent (old generation) buffer
}

func newDoubleBuffer(popSize, nvars int) *doubleBuffer {
	return &doubleBuffer{
		bufs: [2]population{
			newPopulation(popSize, nvars),
			newPopulation(popSize, nvars),
		},
	}
}

// parents returns the read-only source of the current generation.
func (d *doubleBuffer) parents() population {
	return d.bufs[d.old]
}

// children returns the write target for the next generation.
func (d *doubleBuffer) children() population {
	return d.bufs[1-d.old]
}

// swap exchanges the parent and child roles.
func (d *doubleBuffer) swap() {
	d.old = 1 - d.old
}
