package wire

import (
	"github.com/gin-gonic/gin"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"Paystone/internal/api"
	"Paystone/internal/api/config"
	"Paystone/internal/api/handler"
	"Paystone/internal/job"
	"Paystone/internal/pkg/cron"
	"Paystone/internal/pkg/kafka"
	"Paystone/internal/pkg/mongo"
	"Paystone/internal/repository"
	"Paystone/internal/service"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	DB           *gorm.DB
	KafkaManager *kafka.ConsumerManager
	CronMgr      *cron.Manager
}

func BuildApplication(db *gorm.DB, mongoDB *mongodriver.Database, cfg *config.Config) (*ApplicationContainer, error) {
	creatorRepo := repository.NewCreatorRepo(db)
	postRepo := repository.NewPostRepo(db)
	snapshotRepo := repository.NewSnapshotRepo(db)
	payoutRepo := repository.NewPayoutRepo(db)
	auditRepo := mongo.NewPayoutAuditRepo(mongoDB)

	snapshotService := service.NewSnapshotService(postRepo, snapshotRepo)
	payoutService := service.NewPayoutService(creatorRepo, postRepo, snapshotRepo, payoutRepo, auditRepo)
	statementService := service.NewStatementService(creatorRepo, payoutRepo)

	handlers := &api.HandlersGroup{
		PayoutHandler:    handler.NewPayoutHandler(payoutService),
		SnapshotHandler:  handler.NewSnapshotHandler(snapshotService),
		StatementHandler: handler.NewStatementHandler(statementService),
	}

	router := api.SetupRouter(handlers)

	kafkaMgr, err := kafka.NewConsumerManager(cfg, snapshotService)
	if err != nil {
		return nil, err
	}

	cronMgr := cron.NewCronManager(
		job.NewPayoutRecomputeJob(payoutService),
		job.NewMonthlyCloseJob(creatorRepo, payoutService, statementService),
		job.NewSnapshotPollJob(postRepo, snapshotService),
	)

	return &ApplicationContainer{
		Router:       router,
		DB:           db,
		KafkaManager: kafkaMgr,
		CronMgr:      cronMgr,
	}, nil
}
