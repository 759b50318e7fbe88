package mdpipe_test

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/mdpipe"
	"github.com/aretw0/mdpipe/pkg/domain"
)

func Example() {
	inv := domain.Invocation{
		Stdin:  strings.NewReader("Title\n=====\n\n+ one\n+ two\n"),
		Stdout: os.Stdout,
	}
	p, err := mdpipe.New(".", mdpipe.WithInvocation(inv))
	if err != nil {
		fmt.Println(err)
		return
	}

	err = p.Run(context.Background(), mdpipe.Request{
		Settings: map[string]any{"bullet": "-"},
	})
	if err != nil {
		fmt.Println(err)
	}
	// Output:
	// # Title
	//
	// - one
	// - two
}
