package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"library-portal/internal/assistant"
	"library-portal/internal/chat"
	"library-portal/internal/config"
	"library-portal/internal/handlers"
	"library-portal/internal/library"
	authmw "library-portal/internal/middleware"
	"library-portal/internal/notify"
	"library-portal/internal/push"
	"library-portal/internal/store"
	"library-portal/internal/store/firestore"
	"library-portal/internal/store/memory"
)

func main() {
	// Wczytaj zmienne środowiskowe z pliku .env
	if err := godotenv.Load(); err != nil {
		log.Println("Brak pliku .env - używam zmiennych systemowych")
	}

	cfg := config.Load()
	ctx := context.Background()

	// Inicjalizacja magazynu dokumentów (opcjonalne - może nie działać bez credentials)
	var st store.Store
	fsStore, err := firestore.New(ctx)
	if err != nil {
		log.Printf("UWAGA: Firestore nie został zainicjalizowany: %v", err)
		log.Println("Aplikacja będzie działać na magazynie pamięciowym")
		st = memory.New()
	} else {
		defer fsStore.Close()
		st = fsStore
	}

	// Rdzeń rezerwacji
	dispatcher := notify.NewDispatcher(st)
	registry := library.NewRegistry(st, cfg.SlotsPerBorrower)
	ledger := library.NewLedger(st)
	slots := library.NewSlots(st)
	coordinator := library.NewCoordinator(st, registry, ledger, slots, dispatcher, cfg.LoanPeriodDays)

	// Warstwa wiadomości z automatycznym asystentem
	chatService := chat.NewService(st, registry)
	chatService.SetAssistant(assistant.Static{Reply: cfg.AssistantFallback}, cfg.AssistantFallback)

	// Kanał push na żywo (opcjonalny - bez niego zostaje dziennik wiadomości)
	var manager *push.Manager
	if cfg.PushURL != "" {
		manager = push.NewManager(push.NewWebsocketTransport(), push.Options{
			URL:            cfg.PushURL,
			ConnectTimeout: cfg.PushConnectTimeout,
			BackoffBase:    cfg.PushBackoffBase,
			BackoffMax:     cfg.PushBackoffMax,
			MaxRetries:     cfg.PushMaxRetries,
		})
		chatService.SetPusher(manager)
		log.Println("Kanał push skonfigurowany:", cfg.PushURL)
	} else {
		log.Println("Brak PUSH_URL - doręczanie wyłącznie przez dziennik wiadomości")
	}

	// Inicjalizacja routera Chi
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(authmw.Identity)

	// Inicjalizacja handlerów
	catalogHandler := handlers.NewCatalogHandler(st)
	reservationsHandler := handlers.NewReservationsHandler(coordinator, st)
	chatHandler := handlers.NewChatHandler(chatService, manager)
	notificationsHandler := handlers.NewNotificationsHandler(dispatcher)

	// Publiczny katalog
	r.Get("/books", catalogHandler.ListBooks)
	r.Get("/books/{id}", catalogHandler.ShowBook)

	// Powierzchnia czytelnika (wymaga tożsamości)
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireBorrower)

		r.Post("/reservations", reservationsHandler.RequestReservation)
		r.Post("/slots/{index}/return", reservationsHandler.ReturnBook)

		r.Get("/chat", chatHandler.Conversation)
		r.Post("/chat/messages", chatHandler.SendMessage)
		r.Post("/chat/read", chatHandler.MarkRead)
		r.Post("/chat/session", chatHandler.OpenSession)
		r.Delete("/chat/session", chatHandler.CloseSession)

		r.Get("/notifications", notificationsHandler.List)
		r.Post("/notifications/{id}/read", notificationsHandler.MarkRead)
		r.Delete("/notifications/{id}", notificationsHandler.Delete)
	})

	// Panel personelu
	r.Route("/staff", func(r chi.Router) {
		r.Get("/requests", reservationsHandler.PendingRequests)
		r.Post("/requests/{id}/approve", reservationsHandler.Approve)
		r.Post("/requests/{id}/reject", reservationsHandler.Reject)

		r.Get("/notifications", notificationsHandler.StaffList)
		r.Post("/notifications/{id}/read", notificationsHandler.StaffMarkRead)
		r.Delete("/notifications/{id}", notificationsHandler.StaffDelete)
	})

	// Start serwera
	log.Printf("Serwer uruchomiony na porcie %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatalf("Nie można uruchomić serwera: %v", err)
	}
}
