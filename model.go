package main

// Outcome tracks per-object execution bookkeeping. Cloned is set when the
// object's statement committed; ErrorText accumulates failure messages,
// separator-joined, never replaced.
type Outcome struct {
	Cloned    bool
	ErrorText string
}

// appendError records a statement failure against the owning record.
func (o *Outcome) appendError(msg string) {
	o.Cloned = false
	if o.ErrorText == "" {
		o.ErrorText = msg
		return
	}
	o.ErrorText += " | " + msg
}

// SelectedTable is one resolved (schema, table) pair from the cross-joined
// name lists. ObjectID is unique across the selected set.
type SelectedTable struct {
	SchemaID   int
	ObjectID   int
	SchemaName string
	TableName  string
	Outcome
}

// ColumnDef holds both textual definitions for one column of a selected table.
// TranslatedDef is empty unless the column's declared type is user-defined.
type ColumnDef struct {
	ObjectID      int
	Ordinal       int
	Name          string
	NativeDef     string
	TranslatedDef string
}

// ConstraintKind distinguishes the four constraint discovery queries.
type ConstraintKind int

const (
	ConstraintPrimaryKey ConstraintKind = iota
	ConstraintUnique
	ConstraintDefault
	ConstraintCheck
	ConstraintForeignKey
)

func (k ConstraintKind) String() string {
	switch k {
	case ConstraintPrimaryKey:
		return "PRIMARY KEY"
	case ConstraintUnique:
		return "UNIQUE"
	case ConstraintDefault:
		return "DEFAULT"
	case ConstraintCheck:
		return "CHECK"
	case ConstraintForeignKey:
		return "FOREIGN KEY"
	}
	return "UNKNOWN"
}

// ConstraintDef is one constraint from any of the four discovery queries,
// unioned into a single shape. ColumnList ordering reflects the constraint's
// declared key ordinal, not catalog-scan order.
type ConstraintDef struct {
	ObjectID     int
	ConstraintID int
	Name         string
	Kind         ConstraintKind
	TypeClause   string // e.g. "PRIMARY KEY CLUSTERED", "UNIQUE NONCLUSTERED", "DEFAULT"
	ColumnList   string // bracket-quoted, ordinal-ordered; empty for DEFAULT/CHECK
	Definition   string // default expression, check predicate, or FK REFERENCES clause
	Column       string // owning column, DEFAULT constraints only
	Filegroup    string // PK/UNIQUE placement target (filegroup or partition scheme)
	Outcome
}

// indexColumn is one key column of an index with its sort direction.
type indexColumn struct {
	Name       string
	Descending bool
}

// IndexDef is one index that is not already represented as a PK/UNIQUE
// constraint. The exclusion is keyed on the underlying index identity
// (is_primary_key / is_unique_constraint), not on the index name.
type IndexDef struct {
	ObjectID      int
	IndexID       int
	Name          string
	Type          int    // sys.indexes.type
	TypeDesc      string // CLUSTERED, NONCLUSTERED, XML, ...
	IsUnique      bool
	XMLRole       string // PATH/VALUE/PROPERTY for secondary XML indexes
	UsingXMLIndex string // owning primary XML index name, secondary XML only
	KeyColumns    []indexColumn
	Included      []string
	Filegroup     string
	Filter        string // filtered-index predicate, verbatim
	Outcome
}

// TriggerLine is one line of a reconstructed trigger body.
type TriggerLine struct {
	Number int
	Text   string
}

// TriggerDef is one DML trigger on a selected table. Encrypted trigger bodies
// cannot be retrieved; they are recorded but never replayed.
type TriggerDef struct {
	ObjectID    int
	TriggerID   int
	Name        string
	IsEncrypted bool
	Lines       []TriggerLine
	Outcome
}

// CloneSet is the full collected structure of one run. All records are
// transient; nothing outlives the invocation.
type CloneSet struct {
	Tables      []SelectedTable
	Columns     map[int][]ColumnDef // keyed by owning ObjectID
	Constraints []ConstraintDef
	Indexes     []IndexDef
	Triggers    []TriggerDef
}

// constraintsFor returns pointers to the table's constraints of the given
// kinds, in collection order, so the orchestrator can mutate their outcomes.
func (s *CloneSet) constraintsFor(objectID int, kinds ...ConstraintKind) []*ConstraintDef {
	var out []*ConstraintDef
	for i := range s.Constraints {
		c := &s.Constraints[i]
		if c.ObjectID != objectID {
			continue
		}
		for _, k := range kinds {
			if c.Kind == k {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// indexesFor returns pointers to the table's non-constraint indexes.
func (s *CloneSet) indexesFor(objectID int) []*IndexDef {
	var out []*IndexDef
	for i := range s.Indexes {
		if s.Indexes[i].ObjectID == objectID {
			out = append(out, &s.Indexes[i])
		}
	}
	return out
}

// triggersFor returns pointers to the table's triggers.
func (s *CloneSet) triggersFor(objectID int) []*TriggerDef {
	var out []*TriggerDef
	for i := range s.Triggers {
		if s.Triggers[i].ObjectID == objectID {
			out = append(out, &s.Triggers[i])
		}
	}
	return out
}
