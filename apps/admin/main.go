package main

import (
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/scola/core"
	"github.com/trezcool/scola/core/user"
	logsvc "github.com/trezcool/scola/services/logger"
	"github.com/trezcool/scola/storage/kv"
	"github.com/trezcool/scola/storage/kvrepos"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)

	// set up store
	store, err := kv.Open(conf)
	if err != nil {
		logger.Fatal("opening store", err)
	}

	validate := validator.New()
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// start CLI
	usrRepo := kvrepos.NewUserRepository(store)
	cli := commandLine{
		conf:      conf,
		store:     store,
		usrSvc:    user.NewService(usrRepo, validate),
		usrRepo:   usrRepo,
		tutorRepo: kvrepos.NewTutorRepository(store),
	}
	err = cli.run(os.Args)
	if cerr := store.Close(); cerr != nil {
		logger.Error("closing store", cerr)
	}
	if err != nil {
		if err != errHelp {
			logger.Error(err.Error(), err)
		}
		os.Exit(1)
	}
}
