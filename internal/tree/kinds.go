package tree

// Category tags assigned by the parser front-ends. The merge core only
// compares them for equality; handlers dispatch on the declaration kinds.
const (
	KindCompilationUnit = "CompilationUnit"
	KindPackageDecl     = "PackageDecl"
	KindImportDecl      = "ImportDecl"
	KindTypeDecl        = "TypeDecl"
	KindTypeHeader      = "TypeHeader"
	KindFieldDecl       = "FieldDecl"
	KindMethodDecl      = "MethodDecl"
	KindConstructorDecl = "ConstructorDecl"
	KindInitBlock       = "InitBlock"

	// Go-specific declaration kinds.
	KindFuncDecl   = "FuncDecl"
	KindGoTypeDecl = "GoTypeDecl"
	KindVarDecl    = "VarDecl"
	KindConstDecl  = "ConstDecl"
)

// Names given to nodes that occur at most once per parent and match
// positionally rather than by identifier.
const (
	NameHeader            = "header"
	NamePackage           = "package"
	NameInitializer       = "initializer"
	NameStaticInitializer = "static-initializer"
)
