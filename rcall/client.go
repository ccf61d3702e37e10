package rcall

// Invoke drives one call across t using descriptor d and returns the raw
// reply bytes positioned just past the no-exception sentinel, before the
// return value, so the caller can decode Ret itself (Go has no single polymorphic return slot the way
// the source's template Ret does) and then must call d.ApplyInOut on the
// same Reader to finish unpacking in-out parameters.
//
// If clientID is empty, Invoke falls back to t.(ClientIdentifiable) so the
// transport itself can supply the tag (§4.4 step 1) rather than every call
// site threading one through by hand; an explicit clientID always takes
// precedence.
//
// This implements the client call engine (§4.4) steps 1-6; steps 7-8
// (decoding the return value and applying in-out parameters) are left to
// the generated proxies (such as those in the rcalltest package), since
// only they know Ret's concrete type.
func Invoke(t Transport, d *CallDescriptor, clientID string) (*Reader, error) {
	if clientID == "" {
		if ci, ok := t.(ClientIdentifiable); ok {
			clientID = ci.ClientID()
		}
	}

	w := NewWriter()
	w.WriteString(clientID)

	switch d.Kind {
	case KindFunction:
		w.WriteString(d.Name)
	case KindMethod:
		w.WriteString(d.InstanceID)
		w.WriteString(d.Name)
	case KindDestroy:
		w.WriteString(d.InstanceID)
		w.WriteString("~")
	}

	for _, p := range d.Params {
		p.write(w)
	}

	reply, err := sendFrame(t, d.Synchrony, w.Bytes())
	if err != nil {
		return nil, &Exception{Kind: TransportError, Message: err.Error()}
	}
	if reply == nil {
		// Fire-and-forget: no reply to decode.
		return nil, nil
	}

	r := NewReader(reply)
	if b, ok := r.Peek(); ok && b != 0 {
		ex := readException(r)
		return nil, ex
	}
	r.ReadString() // consume the no-exception sentinel

	return r, nil
}

// sendFrame selects the transport capability per §4.4 step 3: request-reply
// calls always use SendReceive; fire-and-forget calls prefer SendReceive
// when the transport offers both (it yields richer error reporting), else
// fall back to Send.
func sendFrame(t Transport, s Synchrony, req []byte) ([]byte, error) {
	rr, hasRR := asRequestReply(t)

	if s == RequestReply {
		if !hasRR {
			return nil, errNoRequestReply
		}
		return rr.SendReceive(req)
	}

	if hasRR {
		return rr.SendReceive(req)
	}
	if ow, ok := asOneWay(t); ok {
		return nil, ow.Send(req)
	}
	return nil, errNoOneWay
}
