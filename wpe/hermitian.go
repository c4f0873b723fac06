package wpe

// hermitianMatrix is an n x n complex Hermitian positive-semidefinite
// accumulator, stored densely but only ever read or written through its
// lower triangle (spec section 3: "R is accessed only via its lower
// triangle until the Cholesky step, which treats it as Hermitian") --
// accumulating only half the entries halves the work and memory traffic
// for the Normal-Equation Builder (C3) and Diagonal Loader (C4). The
// Cholesky solver (C5) reads the same lower triangle and writes its factor
// to a separate slice, leaving this storage unchanged.
type hermitianMatrix struct {
	n    int
	data []complex128 // row-major, n*n; only data[i*n+j] with j<=i is meaningful
}

func newHermitianMatrix(n int) *hermitianMatrix {
	return &hermitianMatrix{n: n, data: make([]complex128, n*n)}
}

func (m *hermitianMatrix) at(i, j int) complex128 {
	return m.data[i*m.n+j]
}

func (m *hermitianMatrix) set(i, j int, v complex128) {
	m.data[i*m.n+j] = v
}

func (m *hermitianMatrix) add(i, j int, v complex128) {
	m.data[i*m.n+j] += v
}

func (m *hermitianMatrix) reset() {
	for i := range m.data {
		m.data[i] = 0
	}
}
