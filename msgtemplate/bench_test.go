package msgtemplate

import "testing"

// BenchmarkResolver_OrderNames measures the cached ordering hot path.
func BenchmarkResolver_OrderNames(b *testing.B) {
	var r Resolver
	tmpl := Intern("Executing method {MethodName} on class {ClassName} in assembly {AssemblyName}.")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = r.OrderNames(tmpl, "asm", "cls", "mtd")
	}
}

// BenchmarkParseOrder measures an uncached scan for comparison.
func BenchmarkParseOrder(b *testing.B) {
	tmpl := "Executing method {MethodName} on class {ClassName} in assembly {AssemblyName}."

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ParseOrder(tmpl)
	}
}

// BenchmarkFormat measures positional rendering of a cached template.
func BenchmarkFormat(b *testing.B) {
	tmpl := "Executing method {MethodName} on class {ClassName} in assembly {AssemblyName}."

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Format(tmpl, "mtd", "cls", "asm")
	}
}
