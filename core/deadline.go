package core

import "sync/atomic"

// Deadline bounds one busy-wait with the repeating hardware alarm.
// The alarm interrupt is the sole writer of expired while armed.
type Deadline struct {
	expired uint32
	armed   bool
	onFire  func()
}

// Arm clears the expiry flag and starts the alarm with a period of ms.
func (d *Deadline) Arm(ms uint32) error {
	if d.onFire == nil {
		d.onFire = d.fire
	}
	if d.armed {
		d.Release()
	}
	atomic.StoreUint32(&d.expired, 0)
	if err := MustAlarm().StartRepeating(ms, d.onFire); err != nil {
		// No alarm means no bound on the wait; report it as already expired.
		atomic.StoreUint32(&d.expired, 1)
		return err
	}
	d.armed = true
	return nil
}

// Expired reports whether the alarm has fired since Arm
func (d *Deadline) Expired() bool {
	return atomic.LoadUint32(&d.expired) != 0
}

// Release cancels the alarm. Safe to call when not armed.
func (d *Deadline) Release() {
	if !d.armed {
		return
	}
	MustAlarm().Cancel()
	d.armed = false
}

func (d *Deadline) fire() {
	atomic.StoreUint32(&d.expired, 1)
}
