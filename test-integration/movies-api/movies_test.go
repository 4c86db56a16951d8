package integration

import (
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/marena/marena-api/internal/api/common"
	"github.com/marena/marena-api/internal/service"
	"github.com/marena/marena-api/test-integration/movies-api/helpers"
)

// describeMovieAPI registers the behaviour shared by every storage backend.
// None of it assumes an empty catalogue.
func describeMovieAPI(server func() *helpers.ServerTestHelper) {
	create := func(name string) *service.Movie {
		resp, err := server().CreateMovie(helpers.NewMovie(name))
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))
		Expect(resp.Header.Get("Location")).NotTo(BeEmpty())
		return helpers.DecodeBody[*service.Movie](resp)
	}

	It("creates, reads, lists, updates and deletes a movie", func() {
		created := create("The Matrix")
		Expect(created.ID).To(BeNumerically(">", 0))
		Expect(created.Name).To(Equal("The Matrix"))

		By("reading it back")
		resp, err := server().GetMovie(created.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(helpers.DecodeBody[*service.Movie](resp)).To(Equal(created))

		By("listing it")
		resp, err = server().ListMovies()
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(helpers.DecodeBody[[]*service.Movie](resp)).To(ContainElement(Equal(created)))

		By("updating it")
		update := helpers.NewMovie("The Matrix Reloaded")
		update.ID = created.ID
		update.Year = 2003
		resp, err = server().UpdateMovie(created.ID, update)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
		_ = resp.Body.Close()

		resp, err = server().GetMovie(created.ID)
		Expect(err).NotTo(HaveOccurred())
		updated := helpers.DecodeBody[*service.Movie](resp)
		Expect(updated.Name).To(Equal("The Matrix Reloaded"))
		Expect(updated.Year).To(Equal(int32(2003)))
		Expect(updated.Version).To(BeNumerically(">", created.Version))

		By("deleting it")
		resp, err = server().DeleteMovie(created.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
		_ = resp.Body.Close()

		resp, err = server().GetMovie(created.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		_ = resp.Body.Close()

		resp, err = server().DeleteMovie(created.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		_ = resp.Body.Close()
	})

	It("ignores a caller supplied id on create", func() {
		movie := helpers.NewMovie("Inception")
		movie.ID = 999999
		resp, err := server().CreateMovie(movie)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))
		Expect(helpers.DecodeBody[*service.Movie](resp).ID).NotTo(Equal(int64(999999)))
	})

	It("rejects an update whose body id differs from the path id", func() {
		created := create("Heat")

		update := helpers.NewMovie("Heat")
		update.ID = created.ID + 1
		resp, err := server().UpdateMovie(created.ID, update)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		Expect(helpers.DecodeBody[common.ErrorResponse](resp).Error).To(ContainSubstring("does not match"))
	})

	It("reports an update of a deleted movie as not found", func() {
		created := create("Ronin")

		resp, err := server().DeleteMovie(created.ID)
		Expect(err).NotTo(HaveOccurred())
		_ = resp.Body.Close()

		update := helpers.NewMovie("Ronin")
		update.ID = created.ID
		resp, err = server().UpdateMovie(created.ID, update)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		_ = resp.Body.Close()
	})

	It("fails an update carrying a stale version", func() {
		created := create("Alien")

		first := helpers.NewMovie("Alien (director's cut)")
		first.ID, first.Version = created.ID, created.Version
		resp, err := server().UpdateMovie(created.ID, first)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
		_ = resp.Body.Close()

		second := helpers.NewMovie("Alien (theatrical)")
		second.ID, second.Version = created.ID, created.Version
		resp, err = server().UpdateMovie(created.ID, second)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
		_ = resp.Body.Close()

		resp, err = server().GetMovie(created.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(helpers.DecodeBody[*service.Movie](resp).Name).To(Equal("Alien (director's cut)"))
	})

	DescribeTable("rejects invalid payloads",
		func(body string) {
			resp, err := server().PostRaw(body)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(helpers.DecodeBody[common.ErrorResponse](resp).Error).NotTo(BeEmpty())
		},
		Entry("malformed JSON", `{"name":`),
		Entry("empty body", ``),
		Entry("blank name", `{"name":"  ","score":5,"genres":"Drama","year":2000}`),
		Entry("score out of range", `{"name":"X","score":11,"genres":"Drama","year":2000}`),
		Entry("year before cinema", `{"name":"X","score":5,"genres":"Drama","year":1700}`),
		Entry("unknown field", `{"name":"X","score":5,"genres":"Drama","year":2000,"rating":"R"}`),
	)
}

var _ = Describe("Movies API with in-memory storage", Label("memory"), func() {
	var (
		tempDir      string
		serverHelper *helpers.ServerTestHelper
	)

	BeforeEach(func() {
		tempDir = createTempDir("marena-memory-")
		serverHelper = helpers.NewServerTestHelper(ctx, helpers.WriteMemoryConfig(tempDir))
		Expect(serverHelper.StartServer()).To(Succeed())
		serverHelper.WaitForServerReady(10 * time.Second)
	})

	AfterEach(func() {
		Expect(serverHelper.StopServer()).To(Succeed())
		cleanupTempDir(tempDir)
	})

	It("starts with an empty catalogue", func() {
		resp, err := serverHelper.ListMovies()
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(helpers.DecodeBody[[]*service.Movie](resp)).To(BeEmpty())
	})

	It("reports healthy", func() {
		resp, err := serverHelper.GetHealth()
		Expect(err).NotTo(HaveOccurred())
		Expect(helpers.DecodeBody[map[string]string](resp)).To(HaveKeyWithValue("status", "healthy"))
	})

	describeMovieAPI(func() *helpers.ServerTestHelper { return serverHelper })
})

var _ = Describe("Movies API with database storage", Ordered, Label("database"), func() {
	var (
		tempDir      string
		db           *helpers.PostgresInstance
		serverHelper *helpers.ServerTestHelper
	)

	BeforeAll(func() {
		tempDir = createTempDir("marena-database-")
		db = helpers.StartPostgres(ctx)

		serverHelper = helpers.NewServerTestHelper(ctx, helpers.WriteDatabaseConfig(tempDir, db))
		Expect(serverHelper.StartServer()).To(Succeed())
		serverHelper.WaitForServerReady(30 * time.Second)
	})

	AfterAll(func() {
		Expect(serverHelper.StopServer()).To(Succeed())
		db.Terminate()
		cleanupTempDir(tempDir)
	})

	describeMovieAPI(func() *helpers.ServerTestHelper { return serverHelper })

	It("keeps movies across a server restart", func() {
		resp, err := serverHelper.CreateMovie(helpers.NewMovie("Persisted"))
		Expect(err).NotTo(HaveOccurred())
		created := helpers.DecodeBody[*service.Movie](resp)

		Expect(serverHelper.StopServer()).To(Succeed())
		serverHelper = helpers.NewServerTestHelper(ctx, helpers.WriteDatabaseConfig(tempDir, db))
		Expect(serverHelper.StartServer()).To(Succeed())
		serverHelper.WaitForServerReady(30 * time.Second)

		resp, err = serverHelper.GetMovie(created.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(helpers.DecodeBody[*service.Movie](resp)).To(Equal(created))
	})
})
