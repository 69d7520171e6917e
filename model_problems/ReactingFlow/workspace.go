package ReactingFlow

import "sync"

// cellBuf is per goroutine scratch for the cell wise kernels.
type cellBuf struct {
	u, q, qa, Y []float64
}

func newBufPool(nVar, qVar, nAux, nSpec int) *sync.Pool {
	return &sync.Pool{New: func() any {
		return &cellBuf{
			u:  make([]float64, nVar),
			q:  make([]float64, qVar),
			qa: make([]float64, nAux),
			Y:  make([]float64, nSpec),
		}
	}}
}

// traceBuf holds the stencil and face vectors of the reconstruction.
type traceBuf struct {
	qc, ql, qr, dq, qh, lo, hi []float64
}

func newTracePool(qVar int) *sync.Pool {
	return &sync.Pool{New: func() any {
		return &traceBuf{
			qc: make([]float64, qVar),
			ql: make([]float64, qVar),
			qr: make([]float64, qVar),
			dq: make([]float64, qVar),
			qh: make([]float64, qVar),
			lo: make([]float64, qVar),
			hi: make([]float64, qVar),
		}
	}}
}
