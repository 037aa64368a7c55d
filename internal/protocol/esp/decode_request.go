package esp

// decodeRequest 无载荷请求，忽略任何多余字节
func decodeRequest(env *Envelope) (Value, error) {
	return Request{Type: env.Type}, nil
}

func decodeWriteUserBytes(env *Envelope) (Value, error) {
	p, err := needPayload(env, UserBytesSize)
	if err != nil {
		return nil, err
	}
	var v WriteUserBytes
	copy(v.Raw[:], p)
	return v, nil
}

func decodeChangeMode(env *Envelope) (Value, error) {
	p, err := needPayload(env, 1)
	if err != nil {
		return nil, err
	}
	return ChangeMode{Mode: p[0]}, nil
}

func decodeWriteVolume(env *Envelope) (Value, error) {
	p, err := needPayload(env, 2)
	if err != nil {
		return nil, err
	}
	return WriteVolume{Main: p[0], Muted: p[1]}, nil
}

func decodeOverrideThumbwheel(env *Envelope) (Value, error) {
	p, err := needPayload(env, 1)
	if err != nil {
		return nil, err
	}
	return OverrideThumbwheel{Speed: p[0]}, nil
}

func decodeSetSavvyUnmute(env *Envelope) (Value, error) {
	p, err := needPayload(env, 1)
	if err != nil {
		return nil, err
	}
	return SetSavvyUnmute{Enabled: p[0] != 0}, nil
}

// decodeUnknown 原样复制整个载荷（含校验字节）
func decodeUnknown(env *Envelope) (Value, error) {
	raw := make([]byte, len(env.Payload()))
	copy(raw, env.Payload())
	return Unknown{Code: env.Type, Payload: raw}, nil
}
