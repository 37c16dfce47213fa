package auth

// Status is the per-server login state.
type Status int

const (
	// StatusNone means no login has been attempted since the roster
	// was (re)created.
	StatusNone Status = iota
	// StatusPending means a login request was sent and no reply has
	// confirmed or rejected it yet.
	StatusPending
	// StatusOK means the server confirmed the login.
	StatusOK
	// StatusFailed means every fallback credential was rejected.
	StatusFailed
)

// Login tracks login progress for one server. Transitions are driven
// only by reply lines from that server; there are no timeouts.
type Login struct {
	Status  Status
	Attempt int
}

// Begin records that a login request was sent using the given chain slot.
func (l *Login) Begin(slot int) {
	l.Status = StatusPending
	l.Attempt = slot
}

// Confirm handles a success reply. It reports whether a credential
// rotation should be sent: any success while a request was pending
// migrates the server onto the current-mode credential.
func (l *Login) Confirm() (rotate bool) {
	rotate = l.Status == StatusPending
	l.Status = StatusOK
	return rotate
}

// Reject handles an incorrect-password reply. When another fallback
// credential exists it is returned and the login becomes pending at the
// new slot; otherwise the login is marked failed.
func (l *Login) Reject(chain *Chain) (cred string, retry bool) {
	cred, slot, ok := chain.Next(l.Attempt)
	if !ok {
		l.Status = StatusFailed
		return "", false
	}
	l.Begin(slot)
	return cred, true
}

// Reset returns the login to the unattempted state. Called whenever the
// owning server's roster is recreated.
func (l *Login) Reset() {
	*l = Login{}
}
