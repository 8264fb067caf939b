package shared

import "crypto/hmac"

const (
	confirmKeyPrefix = "confirm:"
	// ConfirmFormField carries the confirmation token on destructive forms.
	ConfirmFormField = "confirm_token"
)

// ConfirmManager guards irreversible actions behind an explicit confirmation
// step. Issue is called when the confirmation screen is shown; Consume must
// succeed before the action runs and invalidates the token.
type ConfirmManager struct {
	signer *CSRFManager
}

// NewConfirmManager reuses the CSRF secret for confirmation tokens.
func NewConfirmManager(signer *CSRFManager) *ConfirmManager {
	return &ConfirmManager{signer: signer}
}

// Issue stores a one-time token for subject, e.g. "product:42".
func (m *ConfirmManager) Issue(sess *Session, subject string) (string, error) {
	if sess == nil {
		return "", ErrSessionMissing
	}
	token, err := m.signer.sign(sess.ID, confirmKeyPrefix+subject)
	if err != nil {
		return "", err
	}
	sess.Set(confirmKeyPrefix+subject, token)
	return token, nil
}

// Consume checks token against the one issued for subject and removes it.
func (m *ConfirmManager) Consume(sess *Session, subject, token string) error {
	if sess == nil {
		return ErrConfirmationRequired
	}
	key := confirmKeyPrefix + subject
	expected := sess.Get(key)
	if expected == "" || token == "" {
		return ErrConfirmationRequired
	}
	if !hmac.Equal([]byte(expected), []byte(token)) {
		return ErrConfirmationRequired
	}
	sess.Delete(key)
	return nil
}
