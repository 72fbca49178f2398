package main

import (
	"log"
	"os"
	"strconv"

	"simustruct/server"
	"simustruct/serviceEconomy"
	"simustruct/serviceJournal"
	"simustruct/storage"
)

func runServer() {
	db := storage.GetDatabase()

	eco, err := serviceEconomy.Load(db)
	if err != nil {
		log.Fatalf("could not load economy: %v", err)
	}

	s := server.NewServer(eco, db)
	s.Run()
}

func runSeed() {
	db := storage.GetDatabase()
	defer db.Close()

	eco, err := serviceEconomy.Load(db)
	if err != nil {
		log.Fatalf("could not load economy: %v", err)
	}

	if err := eco.Seed(); err != nil {
		log.Fatalf("seeding demo economy failed: %v", err)
	}

	log.Println("demo economy has been seeded")
}

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "seed":
			runSeed()
		case "log":
			count := 20
			if len(os.Args) > 2 {
				var err error
				count, err = strconv.Atoi(os.Args[2])
				if err != nil {
					log.Fatalf("invalid count '%v': %v", os.Args[2], err)
				}
			}
			serviceJournal.ShowLastLog(count)
		case "resetlog":
			serviceJournal.ResetLog()
		default:
			log.Fatalf("unknown subcommand '%v'\n", os.Args[1])
		}
	} else {
		runServer()
	}
}
