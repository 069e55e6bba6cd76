package dialect

// Built-in dialects.
var (
	// StandardSQL follows the SQL standard with no extensions.
	StandardSQL = Define(Spec{Name: "standard"})

	PostgreSQL = Define(Spec{
		Name:                      "postgresql",
		CharSetCasts:              true,
		DoubleDollarQuotedStrings: true,
		OperatorChars:             "+-*/<>=~!@#%^&|`?",
		NoSpecialVar:              true,
		Keywords:                  SQLKeywords + postgresKeywords,
		Types:                     SQLTypes + postgresTypes,
	})

	MySQL = Define(Spec{
		Name:                "mysql",
		OperatorChars:       "*+-%<>!=&|^",
		CharSetCasts:        true,
		DoubleQuotedStrings: true,
		UnquotedBitLiterals: true,
		HashComments:        true,
		SpaceAfterDashes:    true,
		SpecialVar:          "@?",
		IdentifierQuotes:    "`",
		Keywords:            SQLKeywords + "group_concat " + mysqlKeywords,
		Types:               SQLTypes + mysqlTypes,
		Builtin:             mysqlBuiltin,
	})

	// MariaSQL is MySQL with the MariaDB additions.
	MariaSQL = Define(Spec{
		Name:                "mariadb",
		OperatorChars:       "*+-%<>!=&|^",
		CharSetCasts:        true,
		DoubleQuotedStrings: true,
		UnquotedBitLiterals: true,
		HashComments:        true,
		SpaceAfterDashes:    true,
		SpecialVar:          "@?",
		IdentifierQuotes:    "`",
		Keywords:            SQLKeywords + "always generated groupby_concat hard persistent shutdown soft virtual " + mysqlKeywords,
		Types:               SQLTypes + mysqlTypes,
		Builtin:             mysqlBuiltin,
	})

	// MSSQL is Microsoft SQL Server (T-SQL).
	MSSQL = Define(Spec{
		Name:          "mssql",
		Keywords:      SQLKeywords + mssqlKeywords,
		Types:         SQLTypes + mssqlTypes,
		Builtin:       mssqlBuiltin,
		OperatorChars: "*+-%<>!=^&|/",
		SpecialVar:    "@",
	})

	SQLite = Define(Spec{
		Name:             "sqlite",
		Keywords:         SQLKeywords + sqliteKeywords,
		Types:            SQLTypes + sqliteTypes,
		Builtin:          sqliteBuiltin,
		OperatorChars:    "*+-%<>!=&|/~",
		IdentifierQuotes: "`\"",
		SpecialVar:       "@:?$",
	})

	// Cassandra is CQL. Its keyword list replaces the shared one.
	Cassandra = Define(Spec{
		Name:          "cassandra",
		Keywords:      cassandraKeywords,
		Types:         SQLTypes + cassandraTypes,
		SlashComments: true,
	})

	// PLSQL is Oracle PL/SQL together with the SQL*Plus client commands.
	PLSQL = Define(Spec{
		Name:                  "plsql",
		Keywords:              SQLKeywords + plsqlKeywords,
		Builtin:               plsqlBuiltin,
		Types:                 SQLTypes + plsqlTypes,
		OperatorChars:         "*/+-%<>!=~",
		DoubleQuotedStrings:   true,
		CharSetCasts:          true,
		PLSQLQuotingMechanism: true,
	})
)
