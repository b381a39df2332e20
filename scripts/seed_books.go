package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"library-portal/internal/models"
	"library-portal/internal/store/firestore"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Brak pliku .env - używam zmiennych systemowych")
	}

	ctx := context.Background()

	st, err := firestore.New(ctx)
	if err != nil {
		log.Fatalf("Błąd inicjalizacji Firestore: %v", err)
	}
	defer st.Close()

	log.Println("Dodawanie przykładowych książek do bazy danych...")

	books := []models.Book{
		{
			ISBN:            "978-83-8032-464-8",
			Title:           "Wiedźmin: Ostatnie życzenie",
			Author:          "Andrzej Sapkowski",
			Publisher:       "SuperNowa",
			PublicationYear: 1993,
			Category:        "Fantasy",
			Description:     "Zbiór opowiadań o wiedźminie Geralcie z Rivii, łowcy potworów. Pierwsza książka w słynnej serii fantasy.",
			TotalCopies:     3,
			AvailableCopies: 3,
			ShelfLocation:   "A-12",
		},
		{
			ISBN:            "978-83-240-1455-5",
			Title:           "Zbrodnia i kara",
			Author:          "Fiodor Dostojewski",
			Publisher:       "Świat Książki",
			PublicationYear: 1866,
			Category:        "Klasyka",
			Description:     "Psychologiczna powieść o studencie Rodionie Raskolnikowie, który popełnia morderstwo i zmaga się z konsekwencjami swojego czynu.",
			TotalCopies:     2,
			AvailableCopies: 2,
			ShelfLocation:   "B-05",
		},
		{
			ISBN:            "978-83-7686-320-4",
			Title:           "Sapiens: Od zwierząt do bogów",
			Author:          "Yuval Noah Harari",
			Publisher:       "Wydawnictwo Literackie",
			PublicationYear: 2011,
			Category:        "Popularnonaukowa",
			Description:     "Krótka historia ludzkości - od pojawienia się Homo sapiens po współczesność.",
			TotalCopies:     2,
			AvailableCopies: 2,
			ShelfLocation:   "C-03",
		},
		{
			ISBN:            "978-83-280-3594-6",
			Title:           "Diuna",
			Author:          "Frank Herbert",
			Publisher:       "Rebis",
			PublicationYear: 1965,
			Category:        "Science Fiction",
			Description:     "Epicka opowieść o pustynnej planecie Arrakis i walce o przyprawę - najcenniejszą substancję wszechświata.",
			TotalCopies:     1,
			AvailableCopies: 1,
			ShelfLocation:   "A-07",
		},
		{
			ISBN:            "978-83-7469-954-2",
			Title:           "Rok 1984",
			Author:          "George Orwell",
			Publisher:       "Muza",
			PublicationYear: 1949,
			Category:        "Klasyka",
			Description:     "Dystopijna wizja totalitarnego państwa, w którym Wielki Brat patrzy na każdego.",
			TotalCopies:     2,
			AvailableCopies: 2,
			ShelfLocation:   "B-11",
		},
	}

	for i := range books {
		if err := st.PutBook(ctx, &books[i]); err != nil {
			log.Printf("Błąd zapisywania książki %q: %v", books[i].Title, err)
			continue
		}
		log.Printf("Dodano książkę: %s (%s)", books[i].Title, books[i].ID)
	}

	log.Println("Zakończono dodawanie książek")
}
