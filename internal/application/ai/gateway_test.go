package ai_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"github.com/recipewise/server/internal/application/ai"
	"github.com/recipewise/server/internal/ports/outbound"
	apperrors "github.com/recipewise/server/pkg/errors"
	"github.com/recipewise/server/test/testutils"
)

type GatewayTestSuite struct {
	suite.Suite
	text    *testutils.MockTextModel
	image   *testutils.MockImageModel
	gateway *ai.Gateway
	ctx     context.Context
}

func (s *GatewayTestSuite) SetupTest() {
	s.text = new(testutils.MockTextModel)
	s.image = new(testutils.MockImageModel)
	s.gateway = ai.NewGateway(s.text, s.image, ai.GatewayConfig{
		Policy:  fastPolicy(),
		Timeout: time.Second,
	}, nil, zaptest.NewLogger(s.T()))
	s.ctx = context.Background()
}

func (s *GatewayTestSuite) TestInvokeObjectDecodesFencedReply() {
	// Arrange
	s.text.On("GenerateText", mock.Anything, "prompt").
		Return("Sure!\n```json\n{\"title\": \"Pad Thai\", \"servings\": 2}\n```", nil).Once()

	// Act
	var out struct {
		Title    string `json:"title"`
		Servings int    `json:"servings"`
	}
	err := s.gateway.InvokeObject(s.ctx, "prompt", &out)

	// Assert
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Pad Thai", out.Title)
	assert.Equal(s.T(), 2, out.Servings)
	s.text.AssertExpectations(s.T())
}

func (s *GatewayTestSuite) TestInvokeArrayDecodesArray() {
	s.text.On("GenerateText", mock.Anything, mock.Anything).
		Return(`Here are the ideas: [{"substitute":"tofu"},{"substitute":"tempeh"}]`, nil).Once()

	var out []map[string]string
	err := s.gateway.InvokeArray(s.ctx, "prompt", &out)

	require.NoError(s.T(), err)
	require.Len(s.T(), out, 2)
	assert.Equal(s.T(), "tempeh", out[1]["substitute"])
}

func (s *GatewayTestSuite) TestMissingJSONIsMalformed() {
	s.text.On("GenerateText", mock.Anything, mock.Anything).
		Return("I'm sorry, I can't do that.", nil).Once()

	var out map[string]any
	err := s.gateway.InvokeObject(s.ctx, "prompt", &out)

	require.Error(s.T(), err)
	assert.True(s.T(), apperrors.Is(err, apperrors.CodeMalformedResponse))
	s.text.AssertNumberOfCalls(s.T(), "GenerateText", 1)
}

func (s *GatewayTestSuite) TestShapeMismatchIsMalformed() {
	s.text.On("GenerateText", mock.Anything, mock.Anything).
		Return(`{"title": ["not", "a", "string"]}`, nil).Once()

	var out struct {
		Title string `json:"title"`
	}
	err := s.gateway.InvokeObject(s.ctx, "prompt", &out)

	assert.True(s.T(), apperrors.Is(err, apperrors.CodeMalformedResponse))
}

func (s *GatewayTestSuite) TestTransientFailuresAreRetried() {
	busy := &outbound.ModelError{Provider: "mock", StatusCode: http.StatusServiceUnavailable, Err: errors.New("overloaded")}
	s.text.On("GenerateText", mock.Anything, mock.Anything).Return("", busy).Twice()
	s.text.On("GenerateText", mock.Anything, mock.Anything).Return(`{"ok": true}`, nil).Once()

	var out struct {
		OK bool `json:"ok"`
	}
	err := s.gateway.InvokeObject(s.ctx, "prompt", &out)

	require.NoError(s.T(), err)
	assert.True(s.T(), out.OK)
	s.text.AssertNumberOfCalls(s.T(), "GenerateText", 3)
}

func (s *GatewayTestSuite) TestExhaustedRetriesReturnGatewayError() {
	limited := &outbound.ModelError{Provider: "mock", StatusCode: http.StatusTooManyRequests, Err: errors.New("quota")}
	s.text.On("GenerateText", mock.Anything, mock.Anything).Return("", limited)

	_, err := s.gateway.Complete(s.ctx, "prompt")

	require.Error(s.T(), err)
	appErr, ok := apperrors.As(err)
	require.True(s.T(), ok)
	assert.Equal(s.T(), apperrors.CodeGatewayError, appErr.Code)
	assert.Equal(s.T(), 3, appErr.Metadata["attempts"])
	assert.ErrorIs(s.T(), err, limited)
	s.text.AssertNumberOfCalls(s.T(), "GenerateText", 3)
}

func (s *GatewayTestSuite) TestFatalFailureIsNotRetried() {
	denied := &outbound.ModelError{Provider: "mock", StatusCode: http.StatusForbidden, Err: errors.New("denied")}
	s.text.On("GenerateText", mock.Anything, mock.Anything).Return("", denied)

	_, err := s.gateway.Complete(s.ctx, "prompt")

	assert.True(s.T(), apperrors.Is(err, apperrors.CodeGatewayError))
	s.text.AssertNumberOfCalls(s.T(), "GenerateText", 1)
}

func (s *GatewayTestSuite) TestGenerateImageReturnsInlineData() {
	s.image.On("GenerateImage", mock.Anything, "draw soup").
		Return(&outbound.InlineImage{MIMEType: "image/png", Data: []byte{0x89, 0x50}}, nil).Once()

	img, err := s.gateway.GenerateImage(s.ctx, "draw soup")

	require.NoError(s.T(), err)
	require.NotNil(s.T(), img)
	assert.Equal(s.T(), "image/png", img.MIMEType)
}

func (s *GatewayTestSuite) TestGenerateImageWithoutImagePart() {
	s.image.On("GenerateImage", mock.Anything, mock.Anything).
		Return(&outbound.InlineImage{MIMEType: "image/png"}, nil).Once()

	img, err := s.gateway.GenerateImage(s.ctx, "draw soup")

	require.NoError(s.T(), err)
	assert.Nil(s.T(), img)
}

func (s *GatewayTestSuite) TestGenerateImageWithoutModel() {
	gateway := ai.NewGateway(s.text, nil, ai.GatewayConfig{Policy: fastPolicy()}, nil, zaptest.NewLogger(s.T()))

	img, err := gateway.GenerateImage(s.ctx, "draw soup")

	require.NoError(s.T(), err)
	assert.Nil(s.T(), img)
}

func TestGatewayTestSuite(t *testing.T) {
	suite.Run(t, new(GatewayTestSuite))
}
