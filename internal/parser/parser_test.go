package parser

import (
	"testing"
)

func parseJava(t *testing.T, code string) *CompilationUnit {
	t.Helper()
	p := NewParser(NewGrammarLoader())
	unit, err := p.ParseFile("Test.java", []byte(code))
	if err != nil {
		t.Fatal(err)
	}
	return unit
}

func findVariable(unit *CompilationUnit, name string) *VariableDecl {
	for _, decl := range unit.Variables {
		if decl.Name == name {
			return decl
		}
	}
	return nil
}

func TestJavaExtraction(t *testing.T) {
	code := `
package com.example;

import com.fasterxml.jackson.databind.ObjectMapper;
import java.util.*;

public class Service {
    private ObjectMapper shared = new ObjectMapper();

    public void handle(String json) {
        ObjectMapper mapper = new ObjectMapper();
        mapper.readValue(json, Object.class);
        log(mapper);
    }

    void log(Object value) {
    }
}
`
	unit := parseJava(t, code)

	if unit.Language != "java" {
		t.Errorf("expected java, got %s", unit.Language)
	}
	if unit.PackageName != "com.example" {
		t.Errorf("expected package com.example, got %s", unit.PackageName)
	}

	if len(unit.Imports) != 2 {
		t.Fatalf("expected 2 imports, got %d", len(unit.Imports))
	}
	if unit.Imports[0].Name != "com.fasterxml.jackson.databind.ObjectMapper" {
		t.Errorf("unexpected import: %s", unit.Imports[0].Name)
	}
	if !unit.Imports[1].Wildcard {
		t.Error("expected java.util import to be a wildcard")
	}

	if len(unit.Types) != 1 || unit.Types[0].FullName != "com.example.Service" {
		t.Fatalf("unexpected types: %+v", unit.Types)
	}

	shared := findVariable(unit, "shared")
	if shared == nil {
		t.Fatal("field shared not found")
	}
	if shared.Kind != KindField || shared.Type.Name != "ObjectMapper" {
		t.Errorf("unexpected field decl: %+v", shared)
	}

	mapper := findVariable(unit, "mapper")
	if mapper == nil {
		t.Fatal("local mapper not found")
	}
	if mapper.Kind != KindLocal {
		t.Errorf("expected local kind, got %d", mapper.Kind)
	}
	if len(mapper.Usages) != 2 {
		t.Fatalf("expected 2 usages of mapper, got %d: %+v", len(mapper.Usages), mapper.Usages)
	}
	if mapper.Usages[0].InvokedMethod != "readValue" {
		t.Errorf("expected first usage to invoke readValue, got %q", mapper.Usages[0].InvokedMethod)
	}
	if mapper.Usages[1].InvokedMethod != "" {
		t.Errorf("expected second usage to be a plain occurrence, got %q", mapper.Usages[1].InvokedMethod)
	}
	if mapper.Usages[0].Location.Line >= mapper.Usages[1].Location.Line {
		t.Error("usages are not in source order")
	}

	json := findVariable(unit, "json")
	if json == nil || json.Kind != KindParameter {
		t.Fatalf("parameter json not extracted: %+v", json)
	}
	// json appears once as an argument of readValue
	if len(json.Usages) != 1 || json.Usages[0].InvokedMethod != "" {
		t.Errorf("unexpected json usages: %+v", json.Usages)
	}
}

func TestJavaExtractionDeclarationOrder(t *testing.T) {
	code := `
package p;

public class A {
    void first(String one) {
        int local = 0;
    }

    private String late = "";
}
`
	unit := parseJava(t, code)

	var names []string
	for _, decl := range unit.Variables {
		names = append(names, decl.Name)
	}
	want := []string{"one", "local", "late"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected declarations in source order %v, got %v", want, names)
		}
	}
}

func TestJavaShadowing(t *testing.T) {
	code := `
package p;

public class A {
    private Foo f;

    void m() {
        f.alpha();
        String f = "x";
        f.beta();
    }

    void n() {
        f.gamma();
    }
}
`
	unit := parseJava(t, code)

	var field, local *VariableDecl
	for _, decl := range unit.Variables {
		if decl.Name != "f" {
			continue
		}
		if decl.Kind == KindField {
			field = decl
		} else {
			local = decl
		}
	}
	if field == nil || local == nil {
		t.Fatalf("expected both field and local f, got %+v", unit.Variables)
	}

	if len(field.Usages) != 2 {
		t.Fatalf("expected field f to have 2 usages, got %+v", field.Usages)
	}
	if field.Usages[0].InvokedMethod != "alpha" || field.Usages[1].InvokedMethod != "gamma" {
		t.Errorf("field usages bound incorrectly: %+v", field.Usages)
	}

	if len(local.Usages) != 1 || local.Usages[0].InvokedMethod != "beta" {
		t.Errorf("local usages bound incorrectly: %+v", local.Usages)
	}
}

func TestJavaFieldVisibleBeforeDeclaration(t *testing.T) {
	code := `
package p;

public class A {
    void m() {
        helper.run();
    }

    private Worker helper;
}
`
	unit := parseJava(t, code)

	helper := findVariable(unit, "helper")
	if helper == nil {
		t.Fatal("field helper not found")
	}
	if len(helper.Usages) != 1 || helper.Usages[0].InvokedMethod != "run" {
		t.Errorf("expected usage before declaration to bind to the field: %+v", helper.Usages)
	}
}

func TestJavaThisQualifiedFieldUsage(t *testing.T) {
	code := `
package p;

public class A {
    private Worker helper;

    void m() {
        this.helper.run();
        other.helper.run();
    }
}
`
	unit := parseJava(t, code)

	helper := findVariable(unit, "helper")
	if helper == nil {
		t.Fatal("field helper not found")
	}
	if len(helper.Usages) != 1 {
		t.Fatalf("expected only this.helper to count, got %+v", helper.Usages)
	}
	if helper.Usages[0].InvokedMethod != "run" {
		t.Errorf("expected this.helper.run() to record the invocation, got %+v", helper.Usages[0])
	}
}

func TestJavaSupertypes(t *testing.T) {
	code := `
package p;

import com.fasterxml.jackson.databind.ObjectMapper;

public class CustomObjectMapper extends ObjectMapper implements AutoCloseable {
    public void close() {
    }
}
`
	unit := parseJava(t, code)

	if len(unit.Types) != 1 {
		t.Fatalf("expected 1 type, got %d", len(unit.Types))
	}
	decl := unit.Types[0]
	if decl.FullName != "p.CustomObjectMapper" {
		t.Errorf("unexpected full name: %s", decl.FullName)
	}
	if len(decl.Supers) != 2 || decl.Supers[0] != "ObjectMapper" || decl.Supers[1] != "AutoCloseable" {
		t.Errorf("unexpected supers: %v", decl.Supers)
	}
}

func TestJavaEnhancedForAndCatch(t *testing.T) {
	code := `
package p;

import java.util.List;
import java.io.IOException;

public class A {
    void m(List<Item> items) {
        for (Item item : items) {
            item.touch();
        }
        try {
            work();
        } catch (IOException boom) {
            boom.printStackTrace();
        }
    }
}
`
	unit := parseJava(t, code)

	item := findVariable(unit, "item")
	if item == nil || item.Kind != KindForVariable {
		t.Fatalf("for-each variable not extracted: %+v", item)
	}
	if item.Type.Name != "Item" {
		t.Errorf("unexpected for-each type: %+v", item.Type)
	}
	if len(item.Usages) != 1 || item.Usages[0].InvokedMethod != "touch" {
		t.Errorf("unexpected item usages: %+v", item.Usages)
	}

	boom := findVariable(unit, "boom")
	if boom == nil || boom.Kind != KindCatchParam {
		t.Fatalf("catch parameter not extracted: %+v", boom)
	}
	if boom.Type.Name != "IOException" {
		t.Errorf("unexpected catch type: %+v", boom.Type)
	}
	if len(boom.Usages) != 1 || boom.Usages[0].InvokedMethod != "printStackTrace" {
		t.Errorf("unexpected boom usages: %+v", boom.Usages)
	}

	items := findVariable(unit, "items")
	if items == nil || items.Type.Name != "List" {
		t.Fatalf("generic parameter type not erased to List: %+v", items)
	}
}

func TestJavaLambdaShadowing(t *testing.T) {
	code := `
package p;

public class A {
    void m(Mapper mapper, Runner runner) {
        runner.submit(mapper -> mapper.convert());
        mapper.convert();
    }
}
`
	unit := parseJava(t, code)

	var param, lambdaParam *VariableDecl
	for _, decl := range unit.Variables {
		if decl.Name != "mapper" {
			continue
		}
		if decl.Type.Name == "Mapper" {
			param = decl
		} else {
			lambdaParam = decl
		}
	}
	if param == nil || lambdaParam == nil {
		t.Fatalf("expected method parameter and lambda parameter: %+v", unit.Variables)
	}

	if len(param.Usages) != 1 || param.Usages[0].InvokedMethod != "convert" {
		t.Errorf("outer mapper usages wrong: %+v", param.Usages)
	}
	if len(lambdaParam.Usages) != 1 || lambdaParam.Usages[0].InvokedMethod != "convert" {
		t.Errorf("lambda mapper usages wrong: %+v", lambdaParam.Usages)
	}
}

func TestJavaUnusedVariable(t *testing.T) {
	code := `
package p;

public class A {
    void m() {
        Thing unused = new Thing();
    }
}
`
	unit := parseJava(t, code)

	unused := findVariable(unit, "unused")
	if unused == nil {
		t.Fatal("declaration not found")
	}
	if len(unused.Usages) != 0 {
		t.Errorf("expected no usages, got %+v", unused.Usages)
	}
}

func TestUnsupportedLanguage(t *testing.T) {
	p := NewParser(NewGrammarLoader())
	if _, err := p.ParseFile("main.py", []byte("x = 1")); err == nil {
		t.Fatal("expected error for unsupported language")
	}
}
