package types

// Account identifies a participant of the ledger: an issuer, a payer or the
// beneficiary of a pending return. The ledger never interprets it.
type Account string

// String implements fmt.Stringer.
func (a Account) String() string { return string(a) }

// IsZero reports whether the account identifier is empty.
func (a Account) IsZero() bool { return a == "" }

// AccountPtr returns a pointer to a, for optional payer fields.
func AccountPtr(a Account) *Account { return &a }
