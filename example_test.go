package wtf_test

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/aretw0/wtf"
)

// Example_basic demonstrates adding, looking up and hiding definitions.
func Example_basic() {
	home, err := os.MkdirTemp("", "wtf-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(home)

	// Sync is disabled so the example never reaches for the network.
	svc, err := wtf.New(home, wtf.WithSync(false))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	if err := svc.Add(ctx, "rizz", "charisma"); err != nil {
		log.Fatal(err)
	}
	if err := svc.Add(ctx, "rizz", "the ability to flirt"); err != nil {
		log.Fatal(err)
	}

	entries, err := svc.Lookup(ctx, "RIZZ")
	if err != nil {
		log.Fatal(err)
	}
	for _, e := range entries {
		fmt.Println(e)
	}

	if err := svc.Remove(ctx, "rizz", "charisma"); err != nil {
		log.Fatal(err)
	}
	entries, _ = svc.Lookup(ctx, "rizz")
	fmt.Println(len(entries), "visible after remove")

	// Output:
	// rizz:charisma
	// rizz:the ability to flirt
	// 1 visible after remove
}

// ExampleOpen shows the wired components behind a dictionary.
func ExampleOpen() {
	home, err := os.MkdirTemp("", "wtf-open-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(home)

	inst, err := wtf.Open(home, wtf.WithRepo("someone/slang", "main"))
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(inst.Engine != nil)
	fmt.Println(inst.Service.ComponentType())
	// Output:
	// true
	// service
}
