package main

import (
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/trezcool/scola/storage/kv"
)

var gooseRunFunc = goose.Run // mockable

func (cli *commandLine) migrate(args []string) error {
	sqlStore, ok := cli.store.(kv.SQLStore)
	if !ok {
		return fmt.Errorf("%q engine has no migrations", cli.conf.Database.Engine)
	}
	dir, err := kv.PrepareGoose(cli.conf.Database.Engine)
	if err != nil {
		return err
	}
	return gooseRunFunc(args[0], sqlStore.DB(), dir, args[1:]...)
}
