package resolver_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/apilink/pkg/mapping"
	"github.com/matzehuels/apilink/pkg/resolver"
	"github.com/matzehuels/apilink/pkg/symbol"
)

func ExampleResolveURL() {
	table := mapping.MustNew(map[string]string{"classy": "classy.widgets"})

	url, _ := resolver.ResolveURL(symbol.New("classy.widgets.Button.onClick"), table)
	fmt.Println(url)

	url, _ = resolver.ResolveURL(symbol.New("foo.Bar").WithPackage("foo.baz"), table)
	fmt.Println(url)

	_, err := resolver.ResolveURL(symbol.New("X"), table)
	fmt.Println(resolver.IsMissingMapping(err))
	// Output:
	// /docs/api/widgets/#classy-widgets-Button-onClick
	// /docs/api/foo/baz/#foo-Bar
	// true
}

func ExampleResolver_Resolve() {
	r, _ := resolver.New(nil, resolver.DefaultOptions())

	link, _ := r.Resolve(context.Background(), symbol.Ref{Name: "a.b", Package: "a", DisplayName: "Click me"})
	fmt.Println(link.Text)
	fmt.Println(link.Title)
	fmt.Println(link.Anchor)
	// Output:
	// Click me
	// a.b
	// a-b
}
