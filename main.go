package main

import (
	"embed"
	"log"

	"github.com/wailsapp/wails/v3/pkg/application"

	"kaseti/internal/auth"
	"kaseti/internal/bootstrap"
	"kaseti/internal/cache"
	"kaseti/internal/config"
	"kaseti/internal/db"
	"kaseti/internal/engine"
	"kaseti/internal/logging"
	"kaseti/internal/notify"
	"kaseti/internal/player"
	"kaseti/internal/remote"
	"kaseti/internal/store"
	"kaseti/internal/views"
)

// Wails uses Go's `embed` package to embed the frontend files into the binary.
// Any files in the frontend/dist folder will be embedded into the binary and
// made available to the frontend.
// See https://pkg.go.dev/embed for more information.

//go:embed all:frontend/dist
var assets embed.FS

const EventStateChanged = "store:state"

func init() {
	application.RegisterEvent[store.State](EventStateChanged)
	application.RegisterEvent[views.AlbumGridModel](views.EventAlbumGrid)
	application.RegisterEvent[views.TrackListModel](views.EventTrackList)
	application.RegisterEvent[views.ChromeModel](views.EventChrome)
	application.RegisterEvent[notify.Toast](notify.EventToast)
}

func main() {
	paths, err := config.ResolvePaths("kaseti")
	if err != nil {
		log.Fatal(err)
	}

	cfg, err := config.Load(paths.ConfigPath)
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.Logging)

	credentials, err := config.LoadCredentials(paths.BaseDir + "/.env")
	if err != nil {
		log.Fatal(err)
	}

	sqliteDB, err := db.Bootstrap(paths.DBPath)
	if err != nil {
		log.Fatal(err)
	}
	defer sqliteDB.Close()

	musicStore := store.NewStore(store.NewPrefRepository(sqliteDB), logger)
	toasts := notify.NewCenter()

	playbackEngine, err := engine.New(logger)
	if err != nil {
		log.Fatal(err)
	}
	defer playbackEngine.Close()

	tokens := auth.NewTokenSource(
		cfg.API.Endpoint+cfg.API.AuthPath,
		auth.Credentials{ClientID: credentials.ClientID, ClientSecret: credentials.ClientSecret},
		sqliteDB,
		logger,
	)
	catalog := remote.NewClient(cfg.API.Endpoint, tokens, cfg.APITimeout())

	controller := player.NewController(playbackEngine, musicStore, toasts, logger)
	defer controller.Close()

	bootstrapDomain := bootstrap.NewService(tokens, catalog, controller, musicStore, logger)

	trackCache := cache.NewTracks(sqliteDB, paths.TrackCacheDir, logger)
	coverCache := cache.NewCovers(paths.CoverCacheDir, cfg.Cache.CoverMaxEdge, logger)

	// The Wails application is constructed below; the emitter closure lets
	// controllers built before it route events through it once it exists.
	var app *application.App
	emitter := func(eventName string, payload any) {
		if app != nil {
			app.Event.Emit(eventName, payload)
		}
	}

	toasts.SetEmitter(emitter)
	albumView := views.NewAlbumController(musicStore, emitter, logger)
	trackView := views.NewTrackController(musicStore, emitter, logger)
	chromeView := views.NewChromeController(musicStore, emitter)
	searchView := views.NewSearchController(musicStore, views.DefaultSearchDebounce)
	scrollView := views.NewScrollController()
	shortcuts := views.NewShortcutHandler(controller, musicStore)

	app = application.New(application.Options{
		Name:        "Kaseti",
		Description: "Desktop client for the music service",
		Services: []application.Service{
			application.NewService(NewBootstrapService(bootstrapDomain)),
			application.NewService(NewPlayerService(controller, musicStore)),
			application.NewService(NewLibraryService(albumView, trackView, searchView)),
			application.NewService(NewSettingsService(musicStore)),
			application.NewService(NewUIService(shortcuts, scrollView)),
			application.NewService(NewCacheService(trackCache, coverCache)),
		},
		Assets: application.AssetOptions{
			Handler: application.AssetFileServerFS(assets),
		},
		Mac: application.MacOptions{
			ApplicationShouldTerminateAfterLastWindowClosed: true,
		},
	})

	unsubscribe := musicStore.Subscribe(func(state store.State) {
		emitter(EventStateChanged, state)
	})
	defer unsubscribe()

	albumView.Start()
	defer albumView.Stop()
	trackView.Start()
	defer trackView.Stop()
	chromeView.Start()
	defer chromeView.Stop()

	if cfg.Cache.Enabled {
		if err := trackCache.Start(); err != nil {
			logger.WithError(err).Warn("offline cache watcher disabled")
		}
		defer trackCache.Stop()
	}

	app.Window.NewWithOptions(application.WebviewWindowOptions{
		Title: "Kaseti",
		Mac: application.MacWindow{
			InvisibleTitleBarHeight: 50,
			Backdrop:                application.MacBackdropTranslucent,
			TitleBar:                application.MacTitleBarHiddenInset,
		},
		BackgroundColour: application.NewRGB(16, 14, 22),
		URL:              "/",
	})

	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}
