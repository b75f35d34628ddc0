package captable

// USD is a helper for tests to create dollar money from const
func USD(v float64) Money { return M(v, "USD") }

// NO is a helper for tests to create money with no currency set
func NO(v float64) Money { return M(v, "") }

// testLedger builds a minimal initialized ledger with a common class of
// 'authorized' shares.
func testLedger(authorized int64) *Ledger {
	l := NewLedger()
	l.Append(
		NewInit(MustParse("2024-01-01"), "", "acme", "USD"),
		NewDeclareClass(MustParse("2024-01-01"), "", ShareClass{
			Name:       "common",
			Kind:       ClassCommon,
			Authorized: Q(authorized),
		}),
	)
	return l
}

// mustValidate validates an entry against the ledger and appends it,
// panicking on error. Tests that exercise validation failures call
// Ledger.Validate directly instead.
func mustAppend(l *Ledger, entries ...Entry) {
	for _, e := range entries {
		valid, err := l.Validate(e)
		if err != nil {
			panic(err.Error())
		}
		l.Append(valid)
	}
}
