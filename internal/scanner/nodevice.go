package scanner

// NoDevice is the Decoder used when the gateway has no locally attached
// camera or barcode reader.  Acquire and Release always succeed and the
// decode session never produces payloads, so the Driver's state machine
// still governs the pause/resume cycle while all scan events arrive
// through the HTTP submit endpoint instead.
type NoDevice struct{}

type noSession struct{}

func (noSession) Close() error { return nil }

// Acquire succeeds unconditionally.
func (NoDevice) Acquire() error { return nil }

// Decode returns a session that never delivers a frame.
func (NoDevice) Decode(cfg DecodeConfig, onDecode func(payload string)) (Session, error) {
	return noSession{}, nil
}

// Release succeeds unconditionally.
func (NoDevice) Release() error { return nil }
