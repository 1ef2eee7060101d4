//go:build wireinject
// +build wireinject

// wire依赖注入配置，修改后执行 `wire gen ./cmd/api` 重新生成wire_gen.go

package main

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"

	appbook "github.com/xiebiao/library/internal/application/book"
	apploan "github.com/xiebiao/library/internal/application/loan"
	appuser "github.com/xiebiao/library/internal/application/user"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/persistence/database"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/internal/interface/http/router"
	"github.com/xiebiao/library/pkg/metrics"
)

// infrastructureSet 日志、追踪、数据库、Redis、指标
var infrastructureSet = wire.NewSet(
	provideLogger,
	provideTracing,
	provideDB,
	provideRedis,
	metrics.NewRegistry,
	wire.Bind(new(prometheus.Gatherer), new(*prometheus.Registry)),
	provideMetrics,
)

// repositorySet 仓储与事务
var repositorySet = wire.NewSet(
	database.NewUserRepository,
	database.NewBookRepository,
	database.NewLoanRepository,
	database.NewTxManager,
	provideCatalogCache,
	provideTokenBlacklist,
	provideTokenRevoker,
	provideRevocationChecker,
	provideEventPublisher,
)

// domainSet 领域服务
var domainSet = wire.NewSet(
	provideUserService,
	book.NewService,
)

// applicationSet 用例
var applicationSet = wire.NewSet(
	appbook.NewInvalidator,
	wire.Bind(new(apploan.CatalogInvalidator), new(*appbook.Invalidator)),
	wire.Bind(new(appuser.CatalogInvalidator), new(*appbook.Invalidator)),
	appbook.NewListBooksUseCase,
	appbook.NewGetBookUseCase,
	appbook.NewManageBooksUseCase,
	appuser.NewAuthUseCase,
	appuser.NewAccountUseCase,
	apploan.NewCheckoutUseCase,
	apploan.NewReturnUseCase,
	apploan.NewDeleteUseCase,
	apploan.NewQueryUseCase,
)

// interfaceSet 中间件、处理器、路由
var interfaceSet = wire.NewSet(
	provideJWTManager,
	middleware.NewAuthMiddleware,
	handler.NewHealthHandler,
	handler.NewBookHandler,
	handler.NewUserHandler,
	handler.NewLoanHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
	provideServer,
	wire.Struct(new(App), "*"),
)

// InitializeApp 组装整个服务，cleanup按创建的逆序释放资源
func InitializeApp(cfg *config.Config) (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		interfaceSet,
	)
	return nil, nil, nil
}
