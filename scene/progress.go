package scene

import "sync"

// Progress counts finished texture loads and reports floor(loaded*100/total).
// Reports never decrease and the completion callback fires at most once.
type Progress struct {
	mu         sync.Mutex
	total      int
	loaded     int
	last       int
	done       bool
	onProgress func(percent int)
	onComplete func()
}

func NewProgress(total int, onProgress func(int), onComplete func()) *Progress {
	return &Progress{total: total, last: -1, onProgress: onProgress, onComplete: onComplete}
}

// Loaded records one finished load, successful or substituted, and returns
// the new percentage.
func (p *Progress) Loaded() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.loaded < p.total {
		p.loaded++
	}
	pct := p.percent()
	if pct > p.last {
		p.last = pct
		if p.onProgress != nil {
			p.onProgress(pct)
		}
	}
	return pct
}

// Complete fires the completion callback once.
func (p *Progress) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done {
		return
	}
	p.done = true
	if p.onComplete != nil {
		p.onComplete()
	}
}

func (p *Progress) Percent() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.percent()
}

func (p *Progress) percent() int {
	if p.total <= 0 {
		return 100
	}
	return p.loaded * 100 / p.total
}
