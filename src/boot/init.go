package boot

import (
	"log"
	"time"

	"tixgate/src/common"
	"tixgate/src/config"
	"tixgate/src/db"
	"tixgate/src/lib"
	"tixgate/src/lib/gateway"
	"tixgate/src/models"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Event{},
		&models.Pass{},
		&models.Ticket{},
		&models.PaymentSession{},
		&models.WaitingListEntry{},
		&models.PaymentVerificationRequest{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

// InitScheduler registers the housekeeping sweeps: purging dead payment
// sessions and expiring waiting list offers nobody accepted.
func InitScheduler(store *common.SessionStore) {
	if _, err := lib.CreateCronJob(func() {
		if _, err := store.PurgeExpired(); err != nil {
			log.Printf("Error purging expired sessions: %s\n", err.Error())
		}
	}, 5*time.Minute); err != nil {
		log.Printf("Error scheduling session purge: %s\n", err.Error())
	}
	if _, err := lib.CreateCronJob(func() {
		if _, err := common.ExpireOverdueOffers(); err != nil {
			log.Printf("Error expiring overdue offers: %s\n", err.Error())
		}
	}, time.Minute); err != nil {
		log.Printf("Error scheduling offer expiry: %s\n", err.Error())
	}
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	jobsWaitingInQueue := len(sched.Jobs())
	log.Println("Jobs in queue:", jobsWaitingInQueue)
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	err = sched.Shutdown()
	if err != nil {
		log.Println("An error has occurred while shutting down Scheduler. Check logs for info")
		return
	}
}

// InitBroker brings up the queue consumers and makes sure the Kafka topics
// exist for local runs.
func InitBroker(cfg *config.Config, gw gateway.Client, store *common.SessionStore, issuer *common.Issuer) {
	if cfg.Env == "local" {
		go lib.KafkaCreateTopics("tickets-issued", cfg.EmailQueue)
	}
	go common.PendingReconciliationsConsumer(cfg, gw, store, issuer)
	go common.MailerConsumer(cfg)
}
