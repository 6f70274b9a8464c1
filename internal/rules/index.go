package rules

// Key identifies a group of rules by normalized sender and subject.
// The pair is not unique: many rules may share it, each expecting a
// different attachment.
type Key struct {
	Sender  string
	Subject string
}

// Index groups a table's rules by Key, preserving original table order
// within each group. Built once per run and read-only thereafter.
type Index map[Key][]Rule

// NewIndex builds the lookup index from a table snapshot.
func NewIndex(t *Table) Index {
	index := make(Index)
	for _, rule := range t.Rules {
		key := Key{Sender: rule.SenderKey, Subject: rule.SubjectKey}
		index[key] = append(index[key], rule)
	}
	return index
}

// Candidates returns the rules for a raw (un-normalized) sender and subject,
// in table order. An absent key yields zero candidates, never an error.
func (ix Index) Candidates(sender, subject string) []Rule {
	return ix[Key{Sender: Normalize(sender), Subject: Normalize(subject)}]
}
