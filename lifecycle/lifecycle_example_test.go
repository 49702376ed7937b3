// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package lifecycle

import (
	"context"
	"errors"
	"fmt"
)

func ExampleMultiHook() {
	one := HookFunc(func(ctx context.Context) error {
		fmt.Println("one")
		return nil
	})

	two := HookFunc(func(ctx context.Context) error {
		fmt.Println("two")
		return nil
	})

	err := MultiHook(one, two).Run(context.Background())
	if err != nil {
		fmt.Println(err)
		return
	}

	// Output: one
	// two
}

func ExampleMultiHook_multipleErrors() {
	oneErr := errors.New("one")
	twoErr := errors.New("two")

	mh := MultiHook(
		HookFunc(func(ctx context.Context) error { return oneErr }),
		HookFunc(func(ctx context.Context) error { return twoErr }),
	)

	err := mh.Run(context.Background())
	fmt.Println(errors.Is(err, oneErr), errors.Is(err, twoErr))

	// Output: true true
}

func ExampleContext() {
	var lc Context
	ctx := NewContext(context.Background(), &lc)

	c, ok := FromContext(ctx)
	if !ok {
		fmt.Println("missing lifecycle context")
		return
	}

	c.OnPostRun(HookFunc(func(ctx context.Context) error {
		fmt.Println("close exporters")
		return nil
	}))
	c.OnPostRun(HookFunc(func(ctx context.Context) error {
		fmt.Println("stop server")
		return nil
	}))

	err := lc.PostRun().Run(context.Background())
	if err != nil {
		fmt.Println(err)
		return
	}

	// Output: stop server
	// close exporters
}
