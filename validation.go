package ether4

// Validator accumulates errors found while validating a wire frame,
// instead of returning on the first one. Frame.ValidateSize methods across
// ethernet/arp/ipv4 take a *Validator so callers can batch all the checks
// for a frame before deciding whether to drop it.
type Validator struct {
	accum []error
}

// AddError records err if non-nil.
func (v *Validator) AddError(err error) {
	if err != nil {
		v.accum = append(v.accum, err)
	}
}

// HasError reports whether any error has been recorded.
func (v *Validator) HasError() bool { return len(v.accum) > 0 }

// ErrPop returns and clears the oldest recorded error, or nil if none remain.
func (v *Validator) ErrPop() error {
	if len(v.accum) == 0 {
		return nil
	}
	err := v.accum[0]
	v.accum = v.accum[1:]
	return err
}

// Reset clears all recorded errors.
func (v *Validator) Reset() { v.accum = v.accum[:0] }
