//go:build wireinject

package main

import (
	"github.com/bradfitz/gomemcache/memcache"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/inkwell-social/inkwell/core"
	"github.com/inkwell-social/inkwell/x/activity"
	"github.com/inkwell-social/inkwell/x/actor"
	"github.com/inkwell-social/inkwell/x/authorship"
	"github.com/inkwell-social/inkwell/x/chapter"
	"github.com/inkwell-social/inkwell/x/delivery"
	"github.com/inkwell-social/inkwell/x/novel"
	"github.com/inkwell-social/inkwell/x/webfinger"
)

var actorServiceProvider = wire.NewSet(actor.NewService, actor.NewRepository, actor.NewClient, webfinger.NewClient)
var chapterServiceProvider = wire.NewSet(chapter.NewService, chapter.NewRepository)
var deliveryServiceProvider = wire.NewSet(delivery.NewService, actorServiceProvider)

func SetupActorService(db *gorm.DB, mc *memcache.Client, config core.Config) core.ActorService {
	wire.Build(actorServiceProvider)
	return nil
}

func SetupAuthorshipService(db *gorm.DB) core.AuthorshipService {
	wire.Build(authorship.NewService, authorship.NewRepository)
	return nil
}

func SetupChapterService(db *gorm.DB, rdb *redis.Client, config core.Config) core.ChapterService {
	wire.Build(chapterServiceProvider, actor.NewClient)
	return nil
}

func SetupDeliveryService(db *gorm.DB, rdb *redis.Client, mc *memcache.Client, config core.Config) core.DeliveryService {
	wire.Build(deliveryServiceProvider)
	return nil
}

func SetupNovelService(db *gorm.DB, mc *memcache.Client, config core.Config) core.NovelService {
	wire.Build(novel.NewService, novel.NewRepository, actorServiceProvider)
	return nil
}

func SetupActivityService(db *gorm.DB, rdb *redis.Client, mc *memcache.Client, config core.Config) core.ActivityService {
	wire.Build(
		activity.NewService,
		activity.NewRepository,
		authorship.NewService,
		authorship.NewRepository,
		chapterServiceProvider,
		deliveryServiceProvider,
	)
	return nil
}
