package main

import (
	"context"
	"fmt"

	"github.com/trezcool/scola/core/tutor"
	"github.com/trezcool/scola/core/user"
	"github.com/trezcool/scola/storage/kvrepos"
)

func (cli *commandLine) seed() error {
	ctx := context.Background()
	users, err := user.SeedDemoData(ctx, cli.usrRepo)
	if err != nil {
		return err
	}
	tutors, err := tutor.SeedDemoData(ctx, cli.tutorRepo)
	if err != nil {
		return err
	}
	fmt.Printf("created %d users and %d tutors\n", users, tutors)
	return nil
}

func (cli *commandLine) purge() error {
	if err := kvrepos.Purge(context.Background(), cli.store); err != nil {
		return err
	}
	fmt.Println("purged", kvrepos.PurgeableKeys)
	return nil
}
