package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/spf13/cobra"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/infrastructure/persistence/database"
)

var (
	seedBookCount int
	seedValue     uint64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "写入随机图书数据",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if seedBookCount <= 0 {
			return fmt.Errorf("--books must be positive, got %d", seedBookCount)
		}

		db, closeDB, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB()

		svc := book.NewService(database.NewBookRepository(db))
		created, err := seedBooks(cmd.Context(), svc, gofakeit.New(seedValue), seedBookCount)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d books\n", len(created))
		return nil
	},
}

func init() {
	seedCmd.Flags().IntVar(&seedBookCount, "books", 20, "图书数量")
	seedCmd.Flags().Uint64Var(&seedValue, "seed", 0, "随机种子，0为随机")
}

// seedBooks 创建n本随机图书，ISBN冲突时去掉ISBN重试一次
func seedBooks(ctx context.Context, svc book.Service, faker *gofakeit.Faker, n int) ([]*book.Book, error) {
	created := make([]*book.Book, 0, n)
	for i := 0; i < n; i++ {
		fields := fakeBook(faker)
		b, err := svc.Create(ctx, fields)
		if errors.Is(err, book.ErrISBNDuplicate) {
			fields.ISBN = nil
			b, err = svc.Create(ctx, fields)
		}
		if err != nil {
			return created, fmt.Errorf("seed book %d: %w", i+1, err)
		}
		created = append(created, b)
	}
	slog.InfoContext(ctx, "books seeded", "count", len(created))
	return created, nil
}

func fakeBook(faker *gofakeit.Faker) book.Fields {
	title := faker.BookTitle()
	author := faker.BookAuthor()
	genre := faker.BookGenre()
	isbn := faker.Numerify("978##########")
	year := faker.Number(1900, 2024)
	copies := faker.Number(1, 5)
	return book.Fields{
		Title:         &title,
		Author:        &author,
		ISBN:          &isbn,
		PublishedYear: &year,
		Genre:         &genre,
		Copies:        &copies,
	}
}
