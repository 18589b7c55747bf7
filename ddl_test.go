package main

import "testing"

func TestSqlIdent(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"orders", "[orders]"},
		{"weird]name", "[weird]]name]"},
		{"a]]b", "[a]]]]b]"},
		{"with space", "[with space]"},
	}
	for _, tt := range tests {
		if got := sqlIdent(tt.name); got != tt.want {
			t.Errorf("sqlIdent(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestQualifiedName(t *testing.T) {
	if got := qualifiedName("dbo", "orders"); got != "[dbo].[orders]" {
		t.Errorf("qualifiedName() = %q", got)
	}
}

func TestCreateTableDDL(t *testing.T) {
	tbl := SelectedTable{SchemaName: "dbo", TableName: "orders"}
	cols := []ColumnDef{
		{Ordinal: 1, Name: "id", NativeDef: "INT NOT NULL IDENTITY(1,1)"},
		{Ordinal: 2, Name: "phone", NativeDef: "PHONENUMBER NULL", TranslatedDef: "VARCHAR(20) NULL"},
		{Ordinal: 3, Name: "total", NativeDef: "DECIMAL(10,2) NOT NULL"},
	}

	native := createTableDDL(tbl, cols, false)
	wantNative := "CREATE TABLE [dbo].[orders] (\n" +
		"  [id] INT NOT NULL IDENTITY(1,1),\n" +
		"  [phone] PHONENUMBER NULL,\n" +
		"  [total] DECIMAL(10,2) NOT NULL\n" +
		")"
	if native != wantNative {
		t.Errorf("native DDL = %q, want %q", native, wantNative)
	}

	translated := createTableDDL(tbl, cols, true)
	wantTranslated := "CREATE TABLE [dbo].[orders] (\n" +
		"  [id] INT NOT NULL IDENTITY(1,1),\n" +
		"  [phone] VARCHAR(20) NULL,\n" +
		"  [total] DECIMAL(10,2) NOT NULL\n" +
		")"
	if translated != wantTranslated {
		t.Errorf("translated DDL = %q, want %q", translated, wantTranslated)
	}
}

func TestConstraintDDL(t *testing.T) {
	tbl := SelectedTable{SchemaName: "dbo", TableName: "orders"}

	tests := []struct {
		name string
		c    ConstraintDef
		want string
	}{
		{
			"primary key with filegroup",
			ConstraintDef{Name: "PK_orders", Kind: ConstraintPrimaryKey,
				TypeClause: "PRIMARY KEY CLUSTERED", ColumnList: "[id] ASC", Filegroup: "PRIMARY"},
			"ALTER TABLE [dbo].[orders] ADD CONSTRAINT [PK_orders] PRIMARY KEY CLUSTERED ([id] ASC) ON [PRIMARY]",
		},
		{
			"unique",
			ConstraintDef{Name: "UQ_orders_code", Kind: ConstraintUnique,
				TypeClause: "UNIQUE NONCLUSTERED", ColumnList: "[code] ASC"},
			"ALTER TABLE [dbo].[orders] ADD CONSTRAINT [UQ_orders_code] UNIQUE NONCLUSTERED ([code] ASC)",
		},
		{
			"default",
			ConstraintDef{Name: "DF_orders_qty", Kind: ConstraintDefault,
				Definition: "((1))", Column: "qty"},
			"ALTER TABLE [dbo].[orders] ADD CONSTRAINT [DF_orders_qty] DEFAULT ((1)) FOR [qty]",
		},
		{
			"check",
			ConstraintDef{Name: "CK_orders_qty", Kind: ConstraintCheck,
				Definition: "([qty]>(0))"},
			"ALTER TABLE [dbo].[orders] ADD CONSTRAINT [CK_orders_qty] CHECK ([qty]>(0))",
		},
		{
			"foreign key",
			ConstraintDef{Name: "FK_orders_customers", Kind: ConstraintForeignKey,
				ColumnList: "[cust_id]",
				Definition: "REFERENCES [dbo].[customers] ([id]) ON DELETE CASCADE"},
			"ALTER TABLE [dbo].[orders] ADD CONSTRAINT [FK_orders_customers] FOREIGN KEY ([cust_id]) REFERENCES [dbo].[customers] ([id]) ON DELETE CASCADE",
		},
	}
	for _, tt := range tests {
		if got := constraintDDL(tbl, tt.c); got != tt.want {
			t.Errorf("%s: constraintDDL() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestQuotedColumnList(t *testing.T) {
	if got := quotedColumnList([]string{"a", "b"}); got != "[a], [b]" {
		t.Errorf("quotedColumnList() = %q", got)
	}
}
