package appcontext

import (
	"context"
	"log"
	"time"

	"github.com/EventStore/EventStore-Client-Go/v4/esdb"
	kafka_config "github.com/RoyceAzure/lab/rj_kafka/kafka/config"
	kafka_consumer "github.com/RoyceAzure/lab/rj_kafka/kafka/consumer"
	kafka_producer "github.com/RoyceAzure/lab/rj_kafka/kafka/producer"
	"github.com/RoyceAzure/lab/rj_redis/pkg/redis_client"
	"github.com/RoyceAzure/lab/telecom_shop/internal/config"
	"github.com/RoyceAzure/lab/telecom_shop/internal/infra/consumer"
	"github.com/RoyceAzure/lab/telecom_shop/internal/infra/producer"
	"github.com/RoyceAzure/lab/telecom_shop/internal/infra/producer/balancer"
	"github.com/RoyceAzure/lab/telecom_shop/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/telecom_shop/internal/infra/repository/eventdb"
	"github.com/RoyceAzure/lab/telecom_shop/internal/infra/repository/redis_repo"
	"github.com/RoyceAzure/lab/telecom_shop/internal/service"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const notifyPartitions = 6

// ApplicationContext 全站依賴的組裝點
type ApplicationContext struct {
	Cf          *config.Config
	DbConn      *gorm.DB
	UnifiedDB   db.UnifiedDB
	RedisClient *redis.Client
	CartRepo    *redis_repo.CartRepo
	EsClient    *esdb.Client
	EventDao    *eventdb.EventDao
	Notifier    producer.INotificationProducer

	InventoryService    service.IInventoryService
	CartService         service.ICartService
	OrderService        service.IOrderService
	CheckoutService     service.ICheckoutService
	SubscriptionService service.ISubscriptionService
	WifiService         service.IWifiService
	MailService         service.IMailService

	NotificationConsumer *consumer.NotificationConsumer

	kafkaProducer kafka_producer.Producer
}

func NewApplicationContext(cf *config.Config) (*ApplicationContext, error) {
	app := ApplicationContext{
		Cf: cf,
	}
	if err := app.Init(); err != nil {
		return nil, err
	}
	return &app, nil
}

func (app *ApplicationContext) Init() error {
	if err := app.setUpDbConn(); err != nil {
		return err
	}
	if err := app.setUpRedis(); err != nil {
		return err
	}
	if err := app.setUpEventDB(); err != nil {
		return err
	}
	if err := app.setUpKafka(); err != nil {
		return err
	}
	app.setUpServices()
	return nil
}

func (app *ApplicationContext) setUpDbConn() error {
	log.Printf("Start setup database connection")
	conn, err := db.GetDbConn(app.Cf.DbName, app.Cf.DbHost, app.Cf.DbPort, app.Cf.DbUser, app.Cf.DbPas)
	if err != nil {
		return err
	}
	app.DbConn = conn
	app.UnifiedDB = db.NewUnifiedDB(conn)
	if err := app.UnifiedDB.InitMigrate(); err != nil {
		return err
	}
	log.Printf("Finish setup database connection")
	return nil
}

func (app *ApplicationContext) setUpRedis() error {
	log.Printf("Start setup redis")
	client, err := redis_client.GetRedisClient(
		app.Cf.RedisAddr,
		redis_client.WithPassword(app.Cf.RedisPas),
		redis_client.WithDB(app.Cf.RedisDB),
	)
	if err != nil {
		return err
	}
	app.RedisClient = client
	app.CartRepo = redis_repo.NewCartRepo(client)
	log.Printf("Finish setup redis")
	return nil
}

func (app *ApplicationContext) setUpEventDB() error {
	log.Printf("Start setup event db")
	settings, err := esdb.ParseConnectionString(app.Cf.EventDBUrl)
	if err != nil {
		return err
	}
	client, err := esdb.NewClient(settings)
	if err != nil {
		return err
	}
	app.EsClient = client
	app.EventDao = eventdb.NewEventDao(client)
	log.Printf("Finish setup event db")
	return nil
}

func (app *ApplicationContext) setUpKafka() error {
	log.Printf("Start setup kafka")
	kafkaConfig := app.kafkaConfig()
	p, err := kafka_producer.New(&kafkaConfig)
	if err != nil {
		return err
	}
	app.kafkaProducer = p
	app.Notifier = producer.NewNotificationProducer(p)
	log.Printf("Finish setup kafka")
	return nil
}

func (app *ApplicationContext) kafkaConfig() kafka_config.Config {
	return kafka_config.Config{
		Brokers:        app.Cf.KafkaBrokerList(),
		Topic:          app.Cf.NotifyTopic,
		Partition:      notifyPartitions,
		RetryAttempts:  3,
		BatchTimeout:   time.Second,
		BatchSize:      1,
		RequiredAcks:   1,
		CommitInterval: time.Second,
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   5 * time.Second,
		Balancer:       balancer.NewNotificationBalancer(notifyPartitions),
	}
}

func (app *ApplicationContext) setUpServices() {
	app.InventoryService = service.NewInventoryService(app.UnifiedDB)
	app.CartService = service.NewCartService(app.CartRepo, app.UnifiedDB)
	app.OrderService = service.NewOrderService(app.UnifiedDB, app.EventDao, app.Notifier)
	app.CheckoutService = service.NewCheckoutService(
		app.UnifiedDB, app.UnifiedDB, app.UnifiedDB,
		app.CartRepo, app.EventDao, app.Notifier, app.Cf.CommercialEmail)
	app.SubscriptionService = service.NewSubscriptionService(app.UnifiedDB, app.Notifier, app.Cf.CommercialEmail)
	app.WifiService = service.NewWifiService(app.UnifiedDB)
	app.MailService = service.NewMailService(app.Cf.SenderName, app.Cf.EmailAccount, app.Cf.SmtpAuthKey)
}

// StartNotificationWorker 啟動通知 worker，消費 notify topic 寄信
func (app *ApplicationContext) StartNotificationWorker(ctx context.Context) error {
	consumerConfig := app.kafkaConfig()
	consumerConfig.ConsumerGroup = "telecom-shop-notify"
	cos, err := kafka_consumer.New(&consumerConfig)
	if err != nil {
		return err
	}
	app.NotificationConsumer = consumer.NewNotificationConsumer(cos, app.MailService)
	return app.NotificationConsumer.Start(ctx)
}

func (app *ApplicationContext) Shutdown(ctx context.Context) error {
	if app.NotificationConsumer != nil {
		app.NotificationConsumer.Stop()
	}
	if app.kafkaProducer != nil {
		app.kafkaProducer.Close()
	}
	if app.RedisClient != nil {
		if err := app.RedisClient.Close(); err != nil {
			return err
		}
	}
	if app.EsClient != nil {
		if err := app.EsClient.Close(); err != nil {
			return err
		}
	}
	return nil
}
