package graph

import (
	"fmt"
	"slices"
)

// Product is the kind of artifact a target builds.
type Product string

const (
	App                   Product = "app"
	StaticLibrary         Product = "static_library"
	DynamicLibrary        Product = "dynamic_library"
	Framework             Product = "framework"
	StaticFramework       Product = "static_framework"
	UnitTests             Product = "unit_tests"
	UITests               Product = "ui_tests"
	Bundle                Product = "bundle"
	CommandLineTool       Product = "commandLineTool"
	AppClip               Product = "appClip"
	AppExtension          Product = "app_extension"
	Watch2App             Product = "watch2App"
	Watch2Extension       Product = "watch2Extension"
	TVTopShelfExtension   Product = "tvTopShelfExtension"
	MessagesExtension     Product = "messagesExtension"
	StickerPackExtension  Product = "stickerPackExtension"
	XPC                   Product = "xpc"
	SystemExtension       Product = "systemExtension"
	ExtensionKitExtension Product = "extensionKitExtension"
	Macro                 Product = "macro"
)

// AllProducts lists every known product.
var AllProducts = []Product{
	App, StaticLibrary, DynamicLibrary, Framework, StaticFramework,
	UnitTests, UITests, Bundle, CommandLineTool, AppClip, AppExtension,
	Watch2App, Watch2Extension, TVTopShelfExtension, MessagesExtension,
	StickerPackExtension, XPC, SystemExtension, ExtensionKitExtension, Macro,
}

// ParseProduct validates a raw product name.
func ParseProduct(raw string) (Product, error) {
	p := Product(raw)
	if !slices.Contains(AllProducts, p) {
		return "", fmt.Errorf("unknown product %q", raw)
	}
	return p, nil
}

// IsStatic reports whether the product is linked statically into its dependents.
func (p Product) IsStatic() bool {
	return p == StaticLibrary || p == StaticFramework
}

// IsDynamic reports whether the product is a dynamically linked binary.
func (p Product) IsDynamic() bool {
	return p == Framework || p == DynamicLibrary
}

// TestsBundle reports whether the product is a test bundle.
func (p Product) TestsBundle() bool {
	return p == UnitTests || p == UITests
}

// CanHostTests reports whether a test bundle can run inside this product.
func (p Product) CanHostTests() bool {
	return p == App || p == AppClip || p == Watch2App
}

// Runnable reports whether the product can be launched by a scheme.
func (p Product) Runnable() bool {
	switch p {
	case App, AppClip, CommandLineTool, Watch2App, AppExtension,
		MessagesExtension, ExtensionKitExtension, XPC, SystemExtension:
		return true
	default:
		return false
	}
}

// IsExtension reports whether the product is an app extension flavour.
func (p Product) IsExtension() bool {
	switch p {
	case AppExtension, Watch2Extension, TVTopShelfExtension, MessagesExtension,
		StickerPackExtension, ExtensionKitExtension:
		return true
	default:
		return false
	}
}

// FileExtension is the extension of the built product, without the dot.
// Empty for products that are bare executables.
func (p Product) FileExtension() string {
	switch p {
	case App, AppClip, Watch2App:
		return "app"
	case Framework, StaticFramework:
		return "framework"
	case StaticLibrary:
		return "a"
	case DynamicLibrary:
		return "dylib"
	case UnitTests, UITests:
		return "xctest"
	case Bundle:
		return "bundle"
	case AppExtension, Watch2Extension, TVTopShelfExtension, MessagesExtension,
		StickerPackExtension, ExtensionKitExtension:
		return "appex"
	case XPC:
		return "xpc"
	case SystemExtension:
		return "systemextension"
	default:
		return ""
	}
}
