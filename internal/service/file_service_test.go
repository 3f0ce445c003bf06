package service_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"invois/internal/config"
	"invois/internal/domain"
	"invois/internal/port"
	"invois/internal/service"
	"invois/mocks"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

func uploadInput(ownerID uuid.UUID, filename string, data []byte) service.UploadImageInput {
	return service.UploadImageInput{
		OwnerID: ownerID,
		Kind:    service.ImageKindLogo,
		File:    memFile{bytes.NewReader(data)},
		Header: &multipart.FileHeader{
			Filename: filename,
			Size:     int64(len(data)),
		},
	}
}

func testS3Config() *config.S3Config {
	return &config.S3Config{
		Bucket:        "invois-test",
		MaxFileSizeMB: 5,
		PresignExpiry: 900,
	}
}

func TestUploadImage_Success(t *testing.T) {
	ownerID := uuid.New()

	storage := new(mocks.MockObjectStorage)
	storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Run(func(args mock.Arguments) {
			in := args.Get(1).(port.UploadInput)
			assert.Equal(t, "invois-test", in.Bucket)
			assert.Equal(t, "image/png", in.ContentType)
			assert.True(t, strings.HasPrefix(in.Key, fmt.Sprintf("users/%s/logo/", ownerID)))
			assert.True(t, strings.HasSuffix(in.Key, ".png"))

			// The body must be rewound after the magic-byte sniff.
			body, err := io.ReadAll(in.Body)
			require.NoError(t, err)
			assert.Equal(t, pngBytes, body)
		}).
		Return(&port.UploadOutput{Location: "https://s3/key"}, nil)
	storage.On("GetPresignedURL", mock.Anything, "invois-test", mock.AnythingOfType("string"), int64(900)).
		Return("https://s3/presigned", nil)

	svc := service.NewFileService(storage, testS3Config())

	img, err := svc.UploadImage(context.Background(), uploadInput(ownerID, "logo.png", pngBytes))
	require.NoError(t, err)

	assert.Equal(t, "https://s3/presigned", img.URL)
	assert.True(t, strings.HasSuffix(img.Key, ".png"))
	storage.AssertExpectations(t)
}

func TestUploadImage_RejectsUnknownExtension(t *testing.T) {
	svc := service.NewFileService(new(mocks.MockObjectStorage), testS3Config())

	_, err := svc.UploadImage(context.Background(), uploadInput(uuid.New(), "logo.gif", pngBytes))
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestUploadImage_RejectsOversizedFile(t *testing.T) {
	svc := service.NewFileService(new(mocks.MockObjectStorage), testS3Config())

	input := uploadInput(uuid.New(), "logo.png", pngBytes)
	input.Header.Size = 6 * 1024 * 1024

	_, err := svc.UploadImage(context.Background(), input)
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
}

func TestUploadImage_RejectsMismatchedContent(t *testing.T) {
	svc := service.NewFileService(new(mocks.MockObjectStorage), testS3Config())

	// .png extension but plain text payload: the sniff wins.
	_, err := svc.UploadImage(context.Background(), uploadInput(uuid.New(), "logo.png", []byte("just some text")))
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestUploadImage_StorageFailure(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Return(nil, errors.New("connection reset"))

	svc := service.NewFileService(storage, testS3Config())

	_, err := svc.UploadImage(context.Background(), uploadInput(uuid.New(), "logo.png", pngBytes))
	assert.ErrorIs(t, err, domain.ErrUploadFailed)
}

func TestUploadImage_JPEGAccepted(t *testing.T) {
	ownerID := uuid.New()
	jpegBytes := append([]byte("\xff\xd8\xff\xe0"), bytes.Repeat([]byte{0}, 64)...)

	storage := new(mocks.MockObjectStorage)
	storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Return(&port.UploadOutput{}, nil)
	storage.On("GetPresignedURL", mock.Anything, "invois-test", mock.AnythingOfType("string"), int64(900)).
		Return("https://s3/presigned", nil)

	svc := service.NewFileService(storage, testS3Config())

	input := uploadInput(ownerID, "photo.JPEG", jpegBytes)
	input.Kind = service.ImageKindQRCode

	img, err := svc.UploadImage(context.Background(), input)
	require.NoError(t, err)

	assert.Contains(t, img.Key, "/qrcode/")
	assert.True(t, strings.HasSuffix(img.Key, ".jpeg"))
}
