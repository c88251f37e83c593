package params

import (
	"github.com/open-teleop/quadcontrol/pkg/config"
	"github.com/open-teleop/quadcontrol/pkg/control"
	customlog "github.com/open-teleop/quadcontrol/pkg/log"
)

// StoreSource loads parameters from a simulator parameter store. Keys are
// looked up as "<controller name>.<key>".
type StoreSource struct {
	store  *config.ParamStore
	logger customlog.Logger
}

var _ control.ParamSource = (*StoreSource)(nil)

// NewStoreSource returns a ParamSource reading from store.
func NewStoreSource(store *config.ParamStore, logger customlog.Logger) *StoreSource {
	return &StoreSource{store: store, logger: logger}
}

// Load reads every parameter of the named controller. Missing keys take
// their default and are reported with a warning.
func (s *StoreSource) Load(name string) control.Params {
	var p control.Params
	missing := 0

	for _, f := range fields {
		key := name + "." + f.key
		v := f.def
		if s.store.Has(key) {
			v = s.store.Get(key, f.def)
		} else {
			missing++
			s.logger.Warnf("Param %s not set, using default %v", key, f.def)
		}
		f.set(&p, v)
	}

	key := name + "." + rateGainKey
	pqr, ok := s.store.GetVec3(key, [3]float64{})
	if !ok {
		missing++
		s.logger.Warnf("Param %s not set, using default [0 0 0]", key)
	}
	p.KpPQR = control.Vec3{X: pqr[0], Y: pqr[1], Z: pqr[2]}

	s.logger.WithFields(map[string]interface{}{
		"file":    s.store.Path(),
		"missing": missing,
	}).Infof("Loaded %s from param store", name)
	return p
}
