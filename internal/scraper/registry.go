package scraper

// Registry holds all registered strategies. Resolution scans them in
// registration order; there is no priority mechanism beyond that order.
type Registry struct {
	strategies []Strategy
}

func NewRegistry(strategies ...Strategy) *Registry {
	r := &Registry{}
	for _, s := range strategies {
		r.Register(s)
	}
	return r
}

func (r *Registry) Register(s Strategy) {
	r.strategies = append(r.strategies, s)
}

// Resolve returns the first strategy that can handle the dealer, or nil when
// none matches. A miss is not an error; the caller records the outcome.
func (r *Registry) Resolve(dealerName string) Strategy {
	for _, s := range r.strategies {
		if s.CanHandle(dealerName) {
			return s
		}
	}
	return nil
}
