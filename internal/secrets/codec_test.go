package secrets_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/repofleet/internal/secrets"
)

const (
	testPlaintextSecretConstant      = "pat-token-1234567890"
	testBindingMaterialConstant      = "machine-alpha\n1000:operator"
	testOtherBindingMaterialConstant = "machine-beta\n1001:visitor"
	testForeignPlaintextConstant     = "legacy plaintext secret"
	testCorruptPayloadConstant       = "repofleet/v1 scope=user+machine\nnot-base64!!"
)

type staticBinding struct {
	material string
}

func (binding staticBinding) BindingMaterial() ([]byte, error) {
	return []byte(binding.material), nil
}

type failingBinding struct {
	failure error
}

func (binding failingBinding) BindingMaterial() ([]byte, error) {
	return nil, binding.failure
}

func newTestCodec(testInstance *testing.T, material string) *secrets.Codec {
	testInstance.Helper()
	codec, creationError := secrets.NewCodecWithBinding(staticBinding{material: material})
	require.NoError(testInstance, creationError)
	return codec
}

func TestCodecRoundTripRestoresPlaintext(testInstance *testing.T) {
	codec := newTestCodec(testInstance, testBindingMaterialConstant)

	encodedSecret, encodeError := codec.Encode(testPlaintextSecretConstant)
	require.NoError(testInstance, encodeError)
	require.NotEqual(testInstance, testPlaintextSecretConstant, encodedSecret)
	require.True(testInstance, secrets.IsEncoded(encodedSecret))

	decodedSecret, decodeError := codec.Decode(encodedSecret)
	require.NoError(testInstance, decodeError)
	require.Equal(testInstance, testPlaintextSecretConstant, decodedSecret)
}

func TestCodecEncodeIsIdempotent(testInstance *testing.T) {
	codec := newTestCodec(testInstance, testBindingMaterialConstant)

	firstEncoding, firstError := codec.Encode(testPlaintextSecretConstant)
	require.NoError(testInstance, firstError)

	secondEncoding, secondError := codec.Encode(firstEncoding)
	require.NoError(testInstance, secondError)
	require.Equal(testInstance, firstEncoding, secondEncoding)
}

func TestCodecEncodeLeavesEmptyValueUnchanged(testInstance *testing.T) {
	codec := newTestCodec(testInstance, testBindingMaterialConstant)

	encodedSecret, encodeError := codec.Encode("")
	require.NoError(testInstance, encodeError)
	require.Empty(testInstance, encodedSecret)
}

func TestCodecDecodePassesForeignValuesThrough(testInstance *testing.T) {
	codec := newTestCodec(testInstance, testBindingMaterialConstant)

	testCases := []struct {
		name  string
		value string
	}{
		{name: "plaintext_value", value: testForeignPlaintextConstant},
		{name: "empty_value", value: ""},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			decodedSecret, decodeError := codec.Decode(testCase.value)
			require.NoError(testInstance, decodeError)
			require.Equal(testInstance, testCase.value, decodedSecret)
		})
	}
}

func TestCodecDecodeReturnsOriginalValueOnFailure(testInstance *testing.T) {
	codec := newTestCodec(testInstance, testBindingMaterialConstant)

	decodedSecret, decodeError := codec.Decode(testCorruptPayloadConstant)
	require.Error(testInstance, decodeError)
	require.Equal(testInstance, testCorruptPayloadConstant, decodedSecret)

	var typedDecodeError secrets.DecodeError
	require.ErrorAs(testInstance, decodeError, &typedDecodeError)
}

func TestCodecDecodeFailsOnForeignBinding(testInstance *testing.T) {
	encodingCodec := newTestCodec(testInstance, testBindingMaterialConstant)
	decodingCodec := newTestCodec(testInstance, testOtherBindingMaterialConstant)

	encodedSecret, encodeError := encodingCodec.Encode(testPlaintextSecretConstant)
	require.NoError(testInstance, encodeError)

	decodedSecret, decodeError := decodingCodec.Decode(encodedSecret)
	require.Error(testInstance, decodeError)
	require.Equal(testInstance, encodedSecret, decodedSecret)

	var typedDecodeError secrets.DecodeError
	require.ErrorAs(testInstance, decodeError, &typedDecodeError)
}

func TestCodecEncodeSurfacesBindingFailure(testInstance *testing.T) {
	bindingFailure := errors.New("binding unavailable")
	codec, creationError := secrets.NewCodecWithBinding(failingBinding{failure: bindingFailure})
	require.NoError(testInstance, creationError)

	encodedSecret, encodeError := codec.Encode(testPlaintextSecretConstant)
	require.Error(testInstance, encodeError)
	require.ErrorIs(testInstance, encodeError, bindingFailure)
	require.Empty(testInstance, encodedSecret)
}

func TestNewCodecWithBindingRequiresBinding(testInstance *testing.T) {
	codec, creationError := secrets.NewCodecWithBinding(nil)
	require.Nil(testInstance, codec)
	require.ErrorIs(testInstance, creationError, secrets.ErrBindingNotConfigured)
}
