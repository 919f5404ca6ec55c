// Package sqlschema provides the relational schema model and the
// relationship-inference engine used by CRUD scaffolding generators.
//
// The package turns a parsed SQL schema (tables, columns, foreign keys and
// indexes) into a classified, validated entity graph. It answers three
// questions about a schema:
//
//   - Which tables are first-class entities, which are pure many-to-many
//     junction tables, and which are audit/versioning tables?
//   - Which typed, directed relationships do the foreign keys imply?
//   - Is the schema internally consistent enough to generate code from?
//
// # Schema Model
//
// A Schema is an immutable aggregate built once per generation run:
//
//	s, err := sqlschema.New(tables)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Tables hold Columns, ForeignKeys and Indexes. Lookups by table name are
// case-insensitive throughout.
//
// # Classification
//
// Tables are partitioned into three disjoint groups:
//
//	s.EntityTables()   // eligible for CRUD generation
//	s.JunctionTables() // exactly two FKs covering the whole primary key
//	s.AuditTables()    // *_aud, *_audit, revision_info
//
// # Relationship Inference
//
// Every foreign key of a non-junction table yields exactly one M2O
// relationship toward the referenced table:
//
//	for _, r := range s.Relationships() {
//	    fmt.Println(r) // e.g. "posts -> users (M2O)"
//	}
//
// RelationshipGraph expands the direct relationships with their inverse
// sides and pairs junction-table foreign keys into M2M associations:
//
//   - O2O (One-to-One): unique foreign key column
//   - O2M (One-to-Many): inverse side of a plain foreign key
//   - M2O (Many-to-One): plain foreign key
//   - M2M (Many-to-Many): two foreign keys through a junction table
//
// # Validation
//
// Validate reports missing primary keys, foreign keys pointing at
// non-existent tables, and tables whose derived entity names collide:
//
//	result := s.Validate()
//	if result.HasErrors() {
//	    log.Fatal(result)
//	}
//
// No finding is fatal to the model itself; callers decide whether to abort
// generation. Foreign keys to non-existent tables are simply omitted from
// the inferred relationships.
//
// # Schema Acquisition
//
// The model is usually built by the inspect subpackage from a live
// database, from an Atlas-inspected schema, or loaded from a YAML schema
// document:
//
//	s, err := sqlschema.ReadDocument("schema.yaml")
package sqlschema
